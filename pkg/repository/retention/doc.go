// Package retention enforces an age-based retention policy on recorded
// interactions.
//
// # Retention Policy
//
// An interaction expires when its newest recorded exchange is older than the
// retention period. Pruning whole interactions, never individual exchanges,
// keeps every surviving archive replayable.
//
// # Basic Usage
//
//	pruner := retention.NewPruner(repo, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	})
//
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
//
// # Manual Pruning
//
// Pruning can also be triggered directly, which is what the prune CLI
// command does:
//
//	pruned, err := pruner.Prune(ctx)
//
// # Scheduling
//
// The scheduler accepts standard cron expressions:
//
//   - "0 3 * * *": Daily at 3 AM (default)
//   - "0 0 * * 0": Weekly on Sunday at midnight
//   - "0 */6 * * *": Every 6 hours
//
// With an empty PruneSchedule the scheduler does nothing and Start returns
// immediately; a RetentionDays of 0 keeps recordings forever.
package retention
