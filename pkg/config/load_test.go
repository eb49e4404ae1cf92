package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "callisto.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  backend: "file"
  root: "recordings"
  fast_append: true

recorder:
  mode: "Record"

retention:
  days: 30

telemetry:
  logging:
    level: "debug"
    format: "json"

server:
  listen_address: "0.0.0.0:9000"
  read_timeout: "60s"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Archive.Root != "recordings" {
		t.Errorf("expected root %q, got %q", "recordings", cfg.Archive.Root)
	}
	if !cfg.Archive.FastAppend {
		t.Error("expected fast append to be enabled")
	}
	if cfg.Recorder.Mode != "Record" {
		t.Errorf("expected mode %q, got %q", "Record", cfg.Recorder.Mode)
	}
	if cfg.Retention.Days != 30 {
		t.Errorf("expected retention days 30, got %d", cfg.Retention.Days)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9000", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout %v, got %v", 60*time.Second, cfg.Server.ReadTimeout)
	}
}

func TestLoadConfig_AbsentFieldsKeepDefaults(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  root: "recordings"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Archive.Backend != DefaultArchiveBackend {
		t.Errorf("expected default backend %q, got %q", DefaultArchiveBackend, cfg.Archive.Backend)
	}
	if !cfg.Archive.TextDumps {
		t.Error("expected text dumps to default to true")
	}
	if !cfg.Telemetry.Logging.RedactSecrets {
		t.Error("expected redact_secrets to default to true")
	}
	if cfg.Recorder.Mode != "Auto" {
		t.Errorf("expected default mode Auto, got %q", cfg.Recorder.Mode)
	}
	if cfg.Archive.SQLite.BusyTimeout != DefaultSQLiteBusyTimeout {
		t.Errorf("expected default busy timeout %v, got %v", DefaultSQLiteBusyTimeout, cfg.Archive.SQLite.BusyTimeout)
	}
}

func TestLoadConfig_ExplicitFalseWins(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  text_dumps: false

telemetry:
  logging:
    redact_secrets: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Archive.TextDumps {
		t.Error("expected explicit text_dumps: false to survive defaulting")
	}
	if cfg.Telemetry.Logging.RedactSecrets {
		t.Error("expected explicit redact_secrets: false to survive defaulting")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/callisto.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  root: "recordings"
  broken yaml here: [
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestLoadConfig_InvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  backend: "cassette"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
	if !strings.Contains(err.Error(), "archive.backend") {
		t.Errorf("expected archive.backend in error, got: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  root: "from-file"

recorder:
  mode: "Record"
`)

	t.Setenv("CALLISTO_ARCHIVE_ROOT", "from-env")
	t.Setenv("CALLISTO_RECORDER_MODE", "Replay")
	t.Setenv("CALLISTO_ARCHIVE_TEXT_DUMPS", "false")
	t.Setenv("CALLISTO_SERVER_READ_TIMEOUT", "45s")
	t.Setenv("CALLISTO_RETENTION_DAYS", "14")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Archive.Root != "from-env" {
		t.Errorf("expected env override %q, got %q", "from-env", cfg.Archive.Root)
	}
	if cfg.Recorder.Mode != "Replay" {
		t.Errorf("expected env override mode Replay, got %q", cfg.Recorder.Mode)
	}
	if cfg.Archive.TextDumps {
		t.Error("expected CALLISTO_ARCHIVE_TEXT_DUMPS=false to disable text dumps")
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("expected read timeout 45s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Retention.Days != 14 {
		t.Errorf("expected retention days 14, got %d", cfg.Retention.Days)
	}
}

func TestLoadConfigWithEnvOverrides_UnparseableValuesIgnored(t *testing.T) {
	path := writeConfigFile(t, `
server:
  read_timeout: "30s"
`)

	t.Setenv("CALLISTO_SERVER_READ_TIMEOUT", "not-a-duration")
	t.Setenv("CALLISTO_RETENTION_DAYS", "many")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected file value 30s to survive, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Retention.Days != 0 {
		t.Errorf("expected retention days 0, got %d", cfg.Retention.Days)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverrideFailsValidation(t *testing.T) {
	path := writeConfigFile(t, `
recorder:
  mode: "Auto"
`)

	t.Setenv("CALLISTO_RECORDER_MODE", "replay")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation error for lowercase mode token")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "callisto.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}

	if cfg.Archive.Backend != DefaultArchiveBackend {
		t.Errorf("expected default backend, got %q", cfg.Archive.Backend)
	}
	if cfg.Server.ListenAddress != DefaultServerListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
}

func TestLoadOrDefault_EnvOverridesWithoutFile(t *testing.T) {
	t.Setenv("CALLISTO_ARCHIVE_ROOT", "env-root")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "callisto.yaml"))
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}

	if cfg.Archive.Root != "env-root" {
		t.Errorf("expected env root, got %q", cfg.Archive.Root)
	}
}

func TestLoadOrDefault_ExistingFile(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  root: "file-root"
`)

	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Archive.Root != "file-root" {
		t.Errorf("expected file root, got %q", cfg.Archive.Root)
	}
}
