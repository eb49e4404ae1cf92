// Package config provides configuration management for Callisto.
//
// This package handles loading, validating, and managing configuration
// from YAML files with environment variable overrides. It provides a
// type-safe configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in three ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("callisto.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("callisto.yaml")
//
//  3. From an optional file, falling back to defaults when absent:
//     cfg, err := config.LoadOrDefault("callisto.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention
// CALLISTO_SECTION_FIELD. For example:
//
//   - CALLISTO_ARCHIVE_ROOT overrides archive.root
//   - CALLISTO_RECORDER_MODE overrides recorder.mode
//   - CALLISTO_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based
// configuration. The recording engine additionally honors CALLISTO_MODE
// as a process-wide execution mode override; that variable is read by
// the recorder at session resolution time, not here.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later
// overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("callisto.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.Get()
//	fmt.Println(cfg.Archive.Root)
//
// For testing, prefer dependency injection with explicit Config
// instances over the global singleton.
package config
