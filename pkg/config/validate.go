package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g.,
	// "archive.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access
// to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the
	// configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// validBackends are the accepted archive.backend values.
var validBackends = map[string]bool{
	"file":   true,
	"sqlite": true,
	"log":    true,
	"null":   true,
}

// validModes are the accepted recorder.mode values. The tokens are
// case-sensitive.
var validModes = map[string]bool{
	"Passthrough": true,
	"Record":      true,
	"Replay":      true,
	"Auto":        true,
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. It returns nil if the
// configuration is valid. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateArchive(&cfg.Archive)...)
	errs = append(errs, validateScrub(&cfg.Scrub)...)
	errs = append(errs, validateRecorder(&cfg.Recorder)...)
	errs = append(errs, validateSync(&cfg.Sync)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateServer(&cfg.Server)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateArchive validates archive persistence configuration.
func validateArchive(cfg *ArchiveConfig) []FieldError {
	var errs []FieldError

	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "archive.backend",
			Message: fmt.Sprintf("unknown backend %q (must be one of: file, sqlite, log, null)", cfg.Backend),
		})
	}

	if cfg.Backend == "file" && cfg.Root == "" {
		errs = append(errs, FieldError{
			Field:   "archive.root",
			Message: "root directory is required for the file backend",
		})
	}

	if cfg.Aggregate && cfg.AggregateFile == "" {
		errs = append(errs, FieldError{
			Field:   "archive.aggregate_file",
			Message: "aggregate file name is required when aggregate mode is enabled",
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "archive.sqlite.path",
				Message: "database path is required for the sqlite backend",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "archive.sqlite.busy_timeout",
				Message: "busy timeout must be non-negative",
			})
		}
		if cfg.SQLite.CheckpointInterval < 0 {
			errs = append(errs, FieldError{
				Field:   "archive.sqlite.checkpoint_interval",
				Message: "checkpoint interval must be non-negative",
			})
		}
	}

	return errs
}

// validateScrub validates anonymization configuration. Every extra body
// pattern must compile.
func validateScrub(cfg *ScrubConfig) []FieldError {
	var errs []FieldError

	for i, pattern := range cfg.Patterns {
		if pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("scrub.patterns[%d]", i),
				Message: "pattern must not be empty",
			})
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("scrub.patterns[%d]", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	for i, name := range cfg.Headers {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("scrub.headers[%d]", i),
				Message: "header name must not be empty",
			})
		}
	}

	return errs
}

// validateRecorder validates recording engine configuration.
func validateRecorder(cfg *RecorderConfig) []FieldError {
	var errs []FieldError

	if !validModes[cfg.Mode] {
		errs = append(errs, FieldError{
			Field:   "recorder.mode",
			Message: fmt.Sprintf("unknown mode %q (must be one of: Passthrough, Record, Replay, Auto)", cfg.Mode),
		})
	}

	return errs
}

// validateSync validates archive synchronization configuration. The
// section is only checked when enabled, so a disabled default config
// never fails on the empty repository URL.
func validateSync(cfg *SyncConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	if cfg.Repository == "" {
		errs = append(errs, FieldError{
			Field:   "sync.repository",
			Message: "repository URL is required when sync is enabled",
		})
	}
	if cfg.Branch == "" {
		errs = append(errs, FieldError{
			Field:   "sync.branch",
			Message: "branch is required when sync is enabled",
		})
	}
	if cfg.Depth < 0 {
		errs = append(errs, FieldError{
			Field:   "sync.depth",
			Message: "depth must be non-negative",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "sync.timeout",
			Message: "timeout must be non-negative",
		})
	}

	switch cfg.Auth.Type {
	case "", "none":
	case "token":
		if cfg.Auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "sync.auth.token",
				Message: "token is required for token auth",
			})
		}
	case "ssh":
		if cfg.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "sync.auth.ssh_key_path",
				Message: "SSH key path is required for ssh auth",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "sync.auth.type",
			Message: fmt.Sprintf("unknown auth type %q (must be one of: token, ssh, none)", cfg.Auth.Type),
		})
	}

	return errs
}

// validateRetention validates retention configuration. The cron schedule
// itself is validated by the scheduler on start, not here.
func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if cfg.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "retention.days",
			Message: "days must be non-negative (0 keeps recordings forever)",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (must be one of: debug, info, warn, error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (must be one of: json, text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" || !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
		if cfg.Metrics.Namespace == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.namespace",
				Message: "namespace is required when metrics are enabled",
			})
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		if cfg.Tracing.ServiceName == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.service_name",
				Message: "service name is required when tracing is enabled",
			})
		}
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}

// validateServer validates inspector server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address: %v", err),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be non-negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be non-negative",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be non-negative",
		})
	}

	return errs
}
