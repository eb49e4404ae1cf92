package main

import (
	"fmt"
	"log/slog"
	"regexp"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/repository"
	"mercator-hq/callisto/pkg/scrub"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

// initRuntime loads the configuration singleton and installs the
// configured logger. Every command that needs configuration starts here.
func initRuntime() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.Get()

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if _, err := logging.Setup(&cfg.Telemetry.Logging); err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	return cfg, nil
}

// buildScrubber combines the built-in scrub rules with the additional
// headers and body patterns from the configuration.
func buildScrubber(cfg *config.Config) (*scrub.Scrubber, error) {
	sc := scrub.DefaultConfig()

	for _, name := range cfg.Scrub.Headers {
		sc.HeaderRules = append(sc.HeaderRules, scrub.HeaderRule{Name: name})
	}
	for _, pattern := range cfg.Scrub.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, cli.NewConfigError("scrub.patterns", fmt.Sprintf("invalid pattern %q: %v", pattern, err))
		}
		sc.BodyRules = append(sc.BodyRules, scrub.BodyRule{Pattern: re})
	}
	if cfg.Scrub.Replacement != "" {
		for i := range sc.HeaderRules {
			sc.HeaderRules[i].Replacement = cfg.Scrub.Replacement
		}
	}

	return scrub.NewScrubber(sc), nil
}

// openRepository constructs the configured repository variant. The
// returned closer releases backend resources; it is a no-op for
// backends without any.
func openRepository(cfg *config.Config) (repository.Repository, func(), error) {
	scrubber, err := buildScrubber(cfg)
	if err != nil {
		return nil, nil, err
	}

	noop := func() {}

	switch cfg.Archive.Backend {
	case "file", "":
		repo := repository.NewFileRepository(&repository.FileConfig{
			Root:          cfg.Archive.Root,
			Aggregate:     cfg.Archive.Aggregate,
			AggregateFile: cfg.Archive.AggregateFile,
			FastAppend:    cfg.Archive.FastAppend,
			TextDumps:     cfg.Archive.TextDumps,
		}, scrubber)
		return repo, noop, nil

	case "sqlite":
		sqlCfg := repository.DefaultSQLiteConfig()
		sqlCfg.Path = cfg.Archive.SQLite.Path
		if cfg.Archive.SQLite.BusyTimeout > 0 {
			sqlCfg.BusyTimeout = cfg.Archive.SQLite.BusyTimeout
		}
		if cfg.Archive.SQLite.CheckpointInterval > 0 {
			sqlCfg.CheckpointInterval = cfg.Archive.SQLite.CheckpointInterval
		}
		repo, err := repository.NewSQLiteRepository(sqlCfg, scrubber, nil)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil

	case "log":
		repo := repository.NewLogRepository(slog.Default(), slog.LevelInfo, scrubber)
		return repo, noop, nil

	case "null":
		return repository.NewNullRepository(), noop, nil

	default:
		return nil, nil, cli.NewConfigError("archive.backend", fmt.Sprintf("unknown backend %q", cfg.Archive.Backend))
	}
}
