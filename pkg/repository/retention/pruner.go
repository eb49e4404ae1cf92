package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/callisto/pkg/repository"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain recorded
	// interactions. 0 means keep recordings forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the
	// scheduler; Prune can still be called directly.
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces the retention policy on a repository. Age is judged per
// interaction by its newest recorded exchange, so an interaction that is
// still being re-recorded never expires out from under its tests.
type Pruner struct {
	store     repository.Pruneable
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a retention pruner over any repository that supports
// pruning. A nil config uses DefaultConfig.
func NewPruner(store repository.Pruneable, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "repository.retention"),
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune removes every interaction whose newest exchange is older than the
// retention period. It returns the number of interactions removed.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing pruned")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	pruned, err := p.store.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune by age failed: %w", err)
	}

	if pruned > 0 {
		p.logger.Info("retention pruning completed",
			"pruned_count", pruned,
			"retention_days", p.config.RetentionDays,
		)
	} else {
		p.logger.Debug("no interactions pruned",
			"retention_days", p.config.RetentionDays,
		)
	}
	return pruned, nil
}

// Start starts the automatic pruning scheduler. Call this when starting
// the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler. Call this during graceful
// shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
