// Package logging builds the diagnostic logger.
//
// Diagnostic logs are separate from the leveled messages shown to the
// user. They are off unless verbose mode or a log file is configured.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/handiism/gemini-extractor/internal/config"
)

// New returns a logger for settings.
//
// A log file, when set, receives JSON entries at info level. Verbose mode
// adds stderr and switches every output to the console encoder at debug
// level. With neither, a no-op logger is returned.
func New(settings *config.Settings) (*zap.Logger, error) {
	if !settings.Verbose && settings.LogFile == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = nil
	cfg.ErrorOutputPaths = []string{"stderr"}
	if settings.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
	}
	if settings.LogFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, settings.LogFile)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
