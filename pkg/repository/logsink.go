package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mercator-hq/callisto/pkg/interaction"
	"mercator-hq/callisto/pkg/scrub"
)

const logBackend = "log"

// LogRepository is the diagnostic, write-only variant: captures are
// emitted as human-readable log records instead of archives. Nothing it
// writes can be replayed, so Exists always reports false, which forces
// Record under Auto resolution. When the logger does not have the
// configured level enabled, Store is a no-op entirely.
type LogRepository struct {
	logger   *slog.Logger
	level    slog.Level
	scrubber *scrub.Scrubber
}

// NewLogRepository creates a log-sink repository. A nil logger uses
// slog.Default; a nil scrubber uses the default scrub rules.
func NewLogRepository(logger *slog.Logger, level slog.Level, scrubber *scrub.Scrubber) *LogRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if scrubber == nil {
		scrubber = scrub.NewScrubber(nil)
	}
	return &LogRepository{
		logger:   logger.With("component", "repository.log"),
		level:    level,
		scrubber: scrubber,
	}
}

// Exists always reports false: log output is not loadable.
func (r *LogRepository) Exists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

// Load always fails: the log sink is write-only.
func (r *LogRepository) Load(ctx context.Context, name string) (*interaction.Interaction, error) {
	return nil, fmt.Errorf("log repository cannot load %q: %w", name, errors.ErrUnsupported)
}

// Store emits one log record per captured message, scrubbed the same way
// archives are. When the configured level is not enabled, nothing is
// emitted and the result reports nothing stored.
func (r *LogRepository) Store(ctx context.Context, in *interaction.Interaction) (*StoreResult, error) {
	if in == nil || in.Empty() {
		return &StoreResult{Persisted: false}, nil
	}
	if !r.logger.Enabled(ctx, r.level) {
		return &StoreResult{Persisted: false}, nil
	}

	scrubbed := r.scrubber.Scrub(in)
	for _, msg := range scrubbed.Messages {
		r.logger.Log(ctx, r.level, "captured exchange",
			"interaction", scrubbed.Name,
			"method", msg.Request.Method,
			"url", msg.Request.URL,
			"status", msg.Response.Status,
			"elapsed", msg.Elapsed,
			"dump", dumpMessage(msg))
	}

	return &StoreResult{
		Persisted: true,
		Entries:   len(scrubbed.Messages),
	}, nil
}
