package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up when no
// explicit path is given.
const DefaultConfigFile = "callisto.yaml"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is unmarshaled over DefaultConfig, so absent fields keep
// their defaults (including booleans that default to true) while
// explicit fields win. The result is validated before being returned.
//
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention CALLISTO_SECTION_FIELD (e.g.,
// CALLISTO_ARCHIVE_ROOT) and always take precedence over file-based
// configuration.
//
// The loading sequence is:
//  1. Load YAML over defaults
//  2. Apply environment variable overrides
//  3. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads configuration from path when the file exists and
// falls back to pure defaults plus environment overrides when it does
// not. CLI commands use it so running without a callisto.yaml works out
// of the box.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		return LoadConfigWithEnvOverrides(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format CALLISTO_SECTION_FIELD.
// Values that fail to parse for their field type are ignored.
func applyEnvOverrides(cfg *Config) {
	// Archive overrides
	setString(&cfg.Archive.Backend, "CALLISTO_ARCHIVE_BACKEND")
	setString(&cfg.Archive.Root, "CALLISTO_ARCHIVE_ROOT")
	setBool(&cfg.Archive.Aggregate, "CALLISTO_ARCHIVE_AGGREGATE")
	setString(&cfg.Archive.AggregateFile, "CALLISTO_ARCHIVE_AGGREGATE_FILE")
	setBool(&cfg.Archive.FastAppend, "CALLISTO_ARCHIVE_FAST_APPEND")
	setBool(&cfg.Archive.TextDumps, "CALLISTO_ARCHIVE_TEXT_DUMPS")
	setString(&cfg.Archive.SQLite.Path, "CALLISTO_ARCHIVE_SQLITE_PATH")
	setDuration(&cfg.Archive.SQLite.BusyTimeout, "CALLISTO_ARCHIVE_SQLITE_BUSY_TIMEOUT")
	setDuration(&cfg.Archive.SQLite.CheckpointInterval, "CALLISTO_ARCHIVE_SQLITE_CHECKPOINT_INTERVAL")

	// Scrub overrides
	setString(&cfg.Scrub.Replacement, "CALLISTO_SCRUB_REPLACEMENT")
	setStrings(&cfg.Scrub.Headers, "CALLISTO_SCRUB_HEADERS")

	// Recorder overrides
	setString(&cfg.Recorder.Mode, "CALLISTO_RECORDER_MODE")

	// Sync overrides
	setBool(&cfg.Sync.Enabled, "CALLISTO_SYNC_ENABLED")
	setString(&cfg.Sync.Repository, "CALLISTO_SYNC_REPOSITORY")
	setString(&cfg.Sync.Branch, "CALLISTO_SYNC_BRANCH")
	setString(&cfg.Sync.Path, "CALLISTO_SYNC_PATH")
	setString(&cfg.Sync.LocalPath, "CALLISTO_SYNC_LOCAL_PATH")
	setInt(&cfg.Sync.Depth, "CALLISTO_SYNC_DEPTH")
	setDuration(&cfg.Sync.Timeout, "CALLISTO_SYNC_TIMEOUT")
	setBool(&cfg.Sync.CleanOnStart, "CALLISTO_SYNC_CLEAN_ON_START")
	setString(&cfg.Sync.Auth.Type, "CALLISTO_SYNC_AUTH_TYPE")
	setString(&cfg.Sync.Auth.Token, "CALLISTO_SYNC_AUTH_TOKEN")
	setString(&cfg.Sync.Auth.SSHKeyPath, "CALLISTO_SYNC_AUTH_SSH_KEY_PATH")
	setString(&cfg.Sync.Auth.SSHKeyPassphrase, "CALLISTO_SYNC_AUTH_SSH_KEY_PASSPHRASE")

	// Retention overrides
	setInt(&cfg.Retention.Days, "CALLISTO_RETENTION_DAYS")
	setString(&cfg.Retention.Schedule, "CALLISTO_RETENTION_SCHEDULE")

	// Telemetry overrides
	setString(&cfg.Telemetry.Logging.Level, "CALLISTO_TELEMETRY_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "CALLISTO_TELEMETRY_LOGGING_FORMAT")
	setBool(&cfg.Telemetry.Logging.AddSource, "CALLISTO_TELEMETRY_LOGGING_ADD_SOURCE")
	setBool(&cfg.Telemetry.Logging.RedactSecrets, "CALLISTO_TELEMETRY_LOGGING_REDACT_SECRETS")
	setBool(&cfg.Telemetry.Metrics.Enabled, "CALLISTO_TELEMETRY_METRICS_ENABLED")
	setString(&cfg.Telemetry.Metrics.Path, "CALLISTO_TELEMETRY_METRICS_PATH")
	setString(&cfg.Telemetry.Metrics.Namespace, "CALLISTO_TELEMETRY_METRICS_NAMESPACE")
	setString(&cfg.Telemetry.Metrics.Subsystem, "CALLISTO_TELEMETRY_METRICS_SUBSYSTEM")
	setBool(&cfg.Telemetry.Tracing.Enabled, "CALLISTO_TELEMETRY_TRACING_ENABLED")
	setString(&cfg.Telemetry.Tracing.Endpoint, "CALLISTO_TELEMETRY_TRACING_ENDPOINT")
	setString(&cfg.Telemetry.Tracing.ServiceName, "CALLISTO_TELEMETRY_TRACING_SERVICE_NAME")
	setFloat(&cfg.Telemetry.Tracing.SampleRatio, "CALLISTO_TELEMETRY_TRACING_SAMPLE_RATIO")
	setBool(&cfg.Telemetry.Tracing.Insecure, "CALLISTO_TELEMETRY_TRACING_INSECURE")

	// Server overrides
	setString(&cfg.Server.ListenAddress, "CALLISTO_SERVER_LISTEN_ADDRESS")
	setDuration(&cfg.Server.ReadTimeout, "CALLISTO_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "CALLISTO_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "CALLISTO_SERVER_IDLE_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "CALLISTO_SERVER_SHUTDOWN_TIMEOUT")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

// setStrings splits a comma-separated value into a list, trimming
// whitespace around each element.
func setStrings(dst *[]string, key string) {
	val := os.Getenv(key)
	if val == "" {
		return
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setFloat(dst *float64, key string) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
