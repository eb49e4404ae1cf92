package config

import "time"

// Config is the root configuration structure for Callisto. It contains
// all configuration sections for archive persistence, scrubbing, the
// recording engine, archive synchronization, retention, telemetry, and
// the inspector server.
type Config struct {
	// Archive contains configuration for archive persistence including
	// backend selection, directory layout, and append behavior.
	Archive ArchiveConfig `yaml:"archive"`

	// Scrub contains configuration for the anonymization pass applied
	// before interactions are persisted.
	Scrub ScrubConfig `yaml:"scrub"`

	// Recorder contains configuration for the recording engine.
	Recorder RecorderConfig `yaml:"recorder"`

	// Sync contains configuration for sharing recorded archives
	// through a Git repository.
	Sync SyncConfig `yaml:"sync"`

	// Retention contains configuration for pruning old recordings.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry contains configuration for observability including
	// logging, metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Server contains configuration for the archive inspector HTTP
	// server.
	Server ServerConfig `yaml:"server"`
}

// ArchiveConfig contains configuration for archive persistence.
type ArchiveConfig struct {
	// Backend selects the repository variant.
	// Options: "file" (HAR archives on disk), "sqlite" (database),
	// "log" (trace to the logger, nothing persisted), "null" (drop
	// everything).
	// Default: "file"
	Backend string `yaml:"backend"`

	// Root is the logging root directory for the file backend.
	// Archives live under <root>/trace.
	// Default: ".callisto"
	Root string `yaml:"root"`

	// Aggregate switches the file backend from one archive per
	// interaction name to a single fixed-name archive holding every
	// interaction.
	// Default: false
	Aggregate bool `yaml:"aggregate"`

	// AggregateFile is the aggregate archive's file name under
	// <root>/trace. Only used when Aggregate is true.
	// Default: "archive.har"
	AggregateFile string `yaml:"aggregate_file"`

	// FastAppend enables the splice append path when growing an
	// existing per-interaction archive. The decode-append-re-encode
	// baseline remains the fallback whenever splicing is not safe.
	// Default: false
	FastAppend bool `yaml:"fast_append"`

	// TextDumps writes one human-readable .txt file per captured
	// message next to the archive.
	// Default: true
	TextDumps bool `yaml:"text_dumps"`

	// SQLite contains settings for the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains settings for the SQLite archive backend.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "callisto.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long a connection waits on a locked database
	// before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// CheckpointInterval is how often the WAL is checkpointed in the
	// background.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
}

// ScrubConfig contains configuration for the anonymization pass. The
// built-in rules (credential headers, password/token/api-key values in
// bodies) always apply; these settings add to them.
type ScrubConfig struct {
	// Headers lists additional header names to mask beyond the
	// built-in set. Names are matched case-insensitively.
	Headers []string `yaml:"headers"`

	// Patterns lists additional body regular expressions to mask. The
	// last capture group marks the secret; each of its bytes is
	// replaced in place so body length is unchanged. A pattern without
	// capture groups masks the whole match.
	Patterns []string `yaml:"patterns"`

	// Replacement overrides the sentinel substituted for masked header
	// values.
	// Default: "***"
	Replacement string `yaml:"replacement"`
}

// RecorderConfig contains configuration for the recording engine.
type RecorderConfig struct {
	// Mode is the execution mode for sessions started from
	// configuration. The CALLISTO_MODE environment variable, when set
	// to a valid mode, overrides this for every session in the
	// process.
	// Options: "Passthrough", "Record", "Replay", "Auto"
	// Default: "Auto"
	Mode string `yaml:"mode"`
}

// SyncConfig contains configuration for sharing recorded archives
// through a Git repository. Recordings made on one machine are committed
// and replayed elsewhere from the synced clone.
type SyncConfig struct {
	// Enabled controls whether archive synchronization is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository is the Git repository URL holding the shared
	// archives. Required when enabled.
	Repository string `yaml:"repository"`

	// Branch is the branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path is the subdirectory within the repository that holds the
	// archives. Empty means the repository root.
	// Default: ""
	Path string `yaml:"path"`

	// LocalPath is where the repository is cloned.
	// Default: a "callisto-archives" directory under the OS temp dir
	LocalPath string `yaml:"local_path"`

	// Depth limits clone history. 0 clones the full history.
	// Default: 1
	Depth int `yaml:"depth"`

	// Timeout bounds each clone and pull operation.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// CleanOnStart removes any existing local clone before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`

	// Auth contains Git authentication settings.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig contains Git authentication settings.
type GitAuthConfig struct {
	// Type selects the authentication method.
	// Options: "token" (HTTPS access token), "ssh" (private key),
	// "none" (anonymous)
	// Default: "none"
	Type string `yaml:"type"`

	// Token is the HTTPS access token. Required when Type is "token".
	// This should typically be loaded from an environment variable.
	Token string `yaml:"token"`

	// SSHKeyPath is the private key file path. Required when Type is
	// "ssh". The file must not be group or world accessible.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase decrypts the private key, if encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// RetentionConfig contains configuration for pruning old recordings.
type RetentionConfig struct {
	// Days is how long recordings are kept. An interaction is pruned
	// only when its newest exchange is older than this window. 0 keeps
	// everything forever.
	// Default: 0
	Days int `yaml:"days"`

	// Schedule is a standard 5-field cron expression for automatic
	// pruning. Empty disables the scheduler; manual pruning stays
	// available.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks credential-looking values in log output
	// using the same patterns the scrubber applies to archives.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint on the
	// inspector server.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "callisto"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "" (none)
	Subsystem string `yaml:"subsystem"`

	// StoreDurationBuckets defines histogram buckets for archive store
	// duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0]
	StoreDurationBuckets []float64 `yaml:"store_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active. When
	// disabled a noop tracer is used.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to spans.
	// Default: "callisto"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig contains configuration for the archive inspector HTTP
// server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port"
	// Default: "127.0.0.1:8750"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on
	// a kept-alive connection.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}
