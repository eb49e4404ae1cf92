package config

import "time"

// Default values for configuration fields.
const (
	// Archive defaults
	DefaultArchiveBackend           = "file"
	DefaultArchiveRoot              = ".callisto"
	DefaultArchiveAggregateFile     = "archive.har"
	DefaultArchiveTextDumps         = true
	DefaultSQLitePath               = "callisto.db"
	DefaultSQLiteBusyTimeout        = 5 * time.Second
	DefaultSQLiteCheckpointInterval = 5 * time.Minute

	// Scrub defaults
	DefaultScrubReplacement = "***"

	// Recorder defaults
	DefaultRecorderMode = "Auto"

	// Sync defaults
	DefaultSyncBranch  = "main"
	DefaultSyncDepth   = 1
	DefaultSyncTimeout = 60 * time.Second

	// Retention defaults
	DefaultRetentionDays     = 0
	DefaultRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultLoggingRedact      = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "callisto"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "callisto"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second

	// Server defaults
	DefaultServerListenAddress   = "127.0.0.1:8750"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerIdleTimeout     = 120 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second
)

// DefaultStoreDurationBuckets returns the default histogram buckets for
// archive store duration (seconds). Stores are file writes, so the
// buckets skew far lower than request-latency buckets would.
func DefaultStoreDurationBuckets() []float64 {
	return []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}
}

// DefaultConfig returns a fully populated configuration carrying every
// default value, including the booleans that default to true. Loading
// unmarshals YAML over this value, so absent fields keep their defaults
// while explicit ones (including explicit false) win.
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			Backend:       DefaultArchiveBackend,
			Root:          DefaultArchiveRoot,
			AggregateFile: DefaultArchiveAggregateFile,
			TextDumps:     DefaultArchiveTextDumps,
			SQLite: SQLiteConfig{
				Path:               DefaultSQLitePath,
				BusyTimeout:        DefaultSQLiteBusyTimeout,
				CheckpointInterval: DefaultSQLiteCheckpointInterval,
			},
		},
		Scrub: ScrubConfig{
			Replacement: DefaultScrubReplacement,
		},
		Recorder: RecorderConfig{
			Mode: DefaultRecorderMode,
		},
		Sync: SyncConfig{
			Branch:  DefaultSyncBranch,
			Depth:   DefaultSyncDepth,
			Timeout: DefaultSyncTimeout,
		},
		Retention: RetentionConfig{
			Days:     DefaultRetentionDays,
			Schedule: DefaultRetentionSchedule,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:         DefaultLoggingLevel,
				Format:        DefaultLoggingFormat,
				RedactSecrets: DefaultLoggingRedact,
			},
			Metrics: MetricsConfig{
				Path:                 DefaultMetricsPath,
				Namespace:            DefaultMetricsNamespace,
				StoreDurationBuckets: DefaultStoreDurationBuckets(),
			},
			Tracing: TracingConfig{
				Endpoint:    DefaultTracingEndpoint,
				ServiceName: DefaultTracingServiceName,
				SampleRatio: DefaultTracingSampleRatio,
				Insecure:    DefaultTracingInsecure,
				Timeout:     DefaultTracingTimeout,
			},
		},
		Server: ServerConfig{
			ListenAddress:   DefaultServerListenAddress,
			ReadTimeout:     DefaultServerReadTimeout,
			WriteTimeout:    DefaultServerWriteTimeout,
			IdleTimeout:     DefaultServerIdleTimeout,
			ShutdownTimeout: DefaultServerShutdownTimeout,
		},
	}
}

// ApplyDefaults fills zero-valued fields with their defaults. It is
// idempotent and safe to call multiple times.
//
// Boolean fields keep their value: distinguishing "unset" from an
// explicit false is only possible when loading over DefaultConfig, which
// LoadConfig does. Programmatically constructed configs that want the
// true-by-default booleans should start from DefaultConfig.
func ApplyDefaults(cfg *Config) {
	// Archive defaults
	if cfg.Archive.Backend == "" {
		cfg.Archive.Backend = DefaultArchiveBackend
	}
	if cfg.Archive.Root == "" {
		cfg.Archive.Root = DefaultArchiveRoot
	}
	if cfg.Archive.AggregateFile == "" {
		cfg.Archive.AggregateFile = DefaultArchiveAggregateFile
	}
	if cfg.Archive.SQLite.Path == "" {
		cfg.Archive.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Archive.SQLite.BusyTimeout == 0 {
		cfg.Archive.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Archive.SQLite.CheckpointInterval == 0 {
		cfg.Archive.SQLite.CheckpointInterval = DefaultSQLiteCheckpointInterval
	}

	// Scrub defaults
	if cfg.Scrub.Replacement == "" {
		cfg.Scrub.Replacement = DefaultScrubReplacement
	}

	// Recorder defaults
	if cfg.Recorder.Mode == "" {
		cfg.Recorder.Mode = DefaultRecorderMode
	}

	// Sync defaults
	if cfg.Sync.Branch == "" {
		cfg.Sync.Branch = DefaultSyncBranch
	}
	if cfg.Sync.Depth == 0 {
		cfg.Sync.Depth = DefaultSyncDepth
	}
	if cfg.Sync.Timeout == 0 {
		cfg.Sync.Timeout = DefaultSyncTimeout
	}
	if cfg.Sync.Auth.Type == "" {
		cfg.Sync.Auth.Type = "none"
	}

	// Retention defaults
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.StoreDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.StoreDurationBuckets = DefaultStoreDurationBuckets()
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultServerListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultServerIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
}
