// Package logging builds the process logger from telemetry configuration.
//
// Components throughout the codebase log through *slog.Logger values,
// usually derived as slog.Default().With("component", "<name>"). This
// package owns level and format parsing, handler construction, and the
// secret-redacting handler that keeps captured credentials out of log
// output.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"mercator-hq/callisto/pkg/config"
)

// Log output formats accepted by LoggingConfig.Format.
const (
	// FormatJSON outputs logs as JSON objects, one per line.
	FormatJSON = "json"
	// FormatText outputs logs in slog's key=value text format.
	FormatText = "text"
)

// New builds a *slog.Logger from cfg, writing to w.
//
// When cfg.RedactSecrets is set the handler chain includes a Redactor
// that masks credential-shaped values in messages and attributes. A nil
// cfg uses the package defaults from config.DefaultConfig.
func New(cfg *config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		defaults := config.DefaultConfig().Telemetry.Logging
		cfg = &defaults
	}
	if w == nil {
		w = os.Stderr
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	case FormatText, "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %q", cfg.Format)
	}

	if cfg.RedactSecrets {
		handler = NewRedactingHandler(handler, NewRedactor())
	}

	return slog.New(handler), nil
}

// Setup builds a logger per New, writing to stderr, and installs it as
// the process default. Logs go to stderr so command output on stdout
// stays machine readable.
func Setup(cfg *config.LoggingConfig) (*slog.Logger, error) {
	logger, err := New(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level: %q", levelStr)
	}
}
