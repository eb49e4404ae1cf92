package config

import (
	"testing"
	"time"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected default config to be valid, got: %v", err)
	}
	if cfg.Archive.Backend != "file" {
		t.Errorf("expected file backend, got %q", cfg.Archive.Backend)
	}
	if !cfg.Archive.TextDumps {
		t.Error("expected text dumps enabled by default")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics disabled by default")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing disabled by default")
	}
	if cfg.Sync.Enabled {
		t.Error("expected sync disabled by default")
	}
	if cfg.Retention.Days != 0 {
		t.Errorf("expected retention disabled by default, got %d days", cfg.Retention.Days)
	}
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Archive.Backend != DefaultArchiveBackend {
		t.Errorf("expected backend %q, got %q", DefaultArchiveBackend, cfg.Archive.Backend)
	}
	if cfg.Archive.Root != DefaultArchiveRoot {
		t.Errorf("expected root %q, got %q", DefaultArchiveRoot, cfg.Archive.Root)
	}
	if cfg.Archive.SQLite.CheckpointInterval != DefaultSQLiteCheckpointInterval {
		t.Errorf("expected checkpoint interval %v, got %v",
			DefaultSQLiteCheckpointInterval, cfg.Archive.SQLite.CheckpointInterval)
	}
	if cfg.Recorder.Mode != DefaultRecorderMode {
		t.Errorf("expected mode %q, got %q", DefaultRecorderMode, cfg.Recorder.Mode)
	}
	if cfg.Sync.Branch != DefaultSyncBranch {
		t.Errorf("expected branch %q, got %q", DefaultSyncBranch, cfg.Sync.Branch)
	}
	if cfg.Sync.Auth.Type != "none" {
		t.Errorf("expected auth type none, got %q", cfg.Sync.Auth.Type)
	}
	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("expected level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
	}
	if len(cfg.Telemetry.Metrics.StoreDurationBuckets) == 0 {
		t.Error("expected store duration buckets to be filled")
	}
	if cfg.Server.ShutdownTimeout != DefaultServerShutdownTimeout {
		t.Errorf("expected shutdown timeout %v, got %v",
			DefaultServerShutdownTimeout, cfg.Server.ShutdownTimeout)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	first := cfg

	ApplyDefaults(&cfg)
	if cfg.Archive.Root != first.Archive.Root {
		t.Error("expected second ApplyDefaults to change nothing")
	}
	if cfg.Server.ReadTimeout != first.Server.ReadTimeout {
		t.Error("expected second ApplyDefaults to change nothing")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Archive.Root = "custom"
	cfg.Server.ReadTimeout = 5 * time.Second
	ApplyDefaults(&cfg)

	if cfg.Archive.Root != "custom" {
		t.Errorf("expected custom root to survive, got %q", cfg.Archive.Root)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected custom timeout to survive, got %v", cfg.Server.ReadTimeout)
	}
}
