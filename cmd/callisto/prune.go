package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/repository"
	"mercator-hq/callisto/pkg/repository/retention"
)

var pruneFlags struct {
	days int
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove recordings older than the retention window",
	Long: `Run one retention sweep: every interaction whose newest recorded
exchange is older than the retention window is deleted. Interactions
are pruned whole, never entry by entry, so surviving archives always
stay replayable.

The window comes from the retention.days configuration; --days
overrides it for this run. A window of 0 keeps everything and makes
this command a no-op.

Examples:
  # Prune with the configured window
  callisto prune

  # Prune everything older than 30 days
  callisto prune --days 30`,
	RunE: pruneArchives,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneFlags.days, "days", 0, "retention window in days (uses config if not specified)")
}

func pruneArchives(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime()
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	pruneable, ok := repo.(repository.Pruneable)
	if !ok {
		return cli.NewCommandError("prune", fmt.Errorf("the %q backend does not support pruning", cfg.Archive.Backend))
	}

	days := cfg.Retention.Days
	if pruneFlags.days > 0 {
		days = pruneFlags.days
	}
	if days <= 0 {
		fmt.Println("Retention window is 0; nothing to prune.")
		return nil
	}

	pruner := retention.NewPruner(pruneable, &retention.Config{
		RetentionDays: days,
	})

	removed, err := pruner.Prune(context.Background())
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	fmt.Printf("Pruned %d interactions older than %d days\n", removed, days)
	return nil
}
