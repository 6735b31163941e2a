package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handiism/gemini-extractor/internal/config"
	"github.com/handiism/gemini-extractor/internal/logging"
	"github.com/handiism/gemini-extractor/internal/tui"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:   "gemini-extract-tui [archive]",
		Short: "Interactive archive extractor with Gemini password detection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = config.DefaultPath()
			}
			settings, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config %s: %w", configPath, err)
			}
			settings.ApplyEnv()

			// The TUI owns the terminal, so debug logs only go to a file.
			logSettings := *settings
			logSettings.Verbose = false
			logger, err := logging.New(&logSettings)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return tui.Run(settings, logger, path)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
