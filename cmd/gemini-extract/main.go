package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/gemini-extractor/internal/config"
	"github.com/handiism/gemini-extractor/internal/console"
	"github.com/handiism/gemini-extractor/internal/logging"
	"github.com/handiism/gemini-extractor/internal/unlock"
)

// options are the command line flags.
type options struct {
	configPath string
	model      string
	toolPath   string
	verbose    bool
	noWait     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "gemini-extract <archive>",
		Short: "Extract a zip or rar archive, asking Gemini for its password",
		Long: `Extracts a .zip or .rar archive with WinRAR (or rar/unrar on other systems).

If the archive is password-protected, its comment is sent to Gemini and the
password found there is used for extraction. The archive is extracted next to
itself, into a folder named after it. A failed extraction removes that folder.

The Gemini API key is read from the config file, GEMINI_API_KEY or GOOGLE_API_KEY.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args[0], stdin, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default "+config.DefaultPath()+")")
	cmd.Flags().StringVar(&opts.model, "model", "", "Gemini model to ask for the password")
	cmd.Flags().StringVar(&opts.toolPath, "tool", "", "Path to the extraction tool (skips the lookup)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show verbose output and debug logs")
	cmd.Flags().BoolVar(&opts.noWait, "no-wait", false, "Exit without waiting for Enter")

	cmd.AddCommand(newConfigCmd(&opts))
	return cmd
}

// loadSettings reads the config file and applies environment and flag
// overrides, in that order.
func loadSettings(opts options) (*config.Settings, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	settings.ApplyEnv()

	if opts.model != "" {
		settings.Model = opts.model
	}
	if opts.toolPath != "" {
		settings.ToolPath = opts.toolPath
	}
	if opts.verbose {
		settings.Verbose = true
	}
	if opts.noWait {
		settings.WaitForKey = false
	}
	return settings, nil
}

func run(ctx context.Context, opts options, path string, stdin io.Reader, stdout io.Writer) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(settings)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	printer := console.NewPrinter(stdout, settings.Verbose)
	manager := unlock.NewManager(settings, logger, printer.Handle)

	result, err := manager.Extract(ctx, path)
	printer.Close()
	if err != nil {
		return err
	}
	logger.Debug("extraction finished",
		zap.Stringer("outcome", result.Outcome),
		zap.Bool("protected", result.Protected),
		zap.Bool("wrong_password", result.WrongPassword))

	if settings.WaitForKey && !errors.Is(ctx.Err(), context.Canceled) {
		return console.WaitForKey(stdin, stdout)
	}
	return nil
}

func newConfigCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultSettings().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}
