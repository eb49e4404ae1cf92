package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/repository/gitsync"
)

var syncFlags struct {
	clean bool
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync shared archives from the team's Git repository",
	Long: `Clone or update the local copy of the shared archive repository.

Teams record interactions on one machine, commit the archives, and
replay them elsewhere from the synced clone. The command clones the
repository on first use and pulls afterwards, reporting which archive
files changed.

Requires sync.enabled and sync.repository in the configuration.

Examples:
  # Clone or update the shared archives
  callisto sync

  # Discard the local clone and start fresh
  callisto sync --clean`,
	RunE: syncArchives,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncFlags.clean, "clean", false, "remove the local clone before cloning")
}

func syncArchives(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime()
	if err != nil {
		return err
	}

	if !cfg.Sync.Enabled {
		return cli.NewConfigError("sync.enabled", "archive synchronization is disabled")
	}

	syncer, err := gitsync.NewSyncer(gitsync.Config{
		Repository:   cfg.Sync.Repository,
		Branch:       cfg.Sync.Branch,
		Path:         cfg.Sync.Path,
		LocalPath:    cfg.Sync.LocalPath,
		Depth:        cfg.Sync.Depth,
		Timeout:      cfg.Sync.Timeout,
		CleanOnStart: syncFlags.clean || cfg.Sync.CleanOnStart,
		Auth: gitsync.AuthConfig{
			Type:             cfg.Sync.Auth.Type,
			Token:            cfg.Sync.Auth.Token,
			SSHKeyPath:       cfg.Sync.Auth.SSHKeyPath,
			SSHKeyPassphrase: cfg.Sync.Auth.SSHKeyPassphrase,
		},
	}, nil)
	if err != nil {
		return cli.NewCommandError("sync", err)
	}

	ctx := context.Background()

	if err := syncer.Clone(ctx); err != nil {
		return cli.NewCommandError("sync", err)
	}

	result, err := syncer.Pull(ctx)
	if err != nil {
		return cli.NewCommandError("sync", err)
	}

	commit, err := syncer.CurrentCommit()
	if err != nil {
		return cli.NewCommandError("sync", err)
	}

	fmt.Printf("✓ Synced %s (%s)\n", cfg.Sync.Repository, commit.Branch)
	fmt.Printf("  Commit: %.12s %s\n", commit.SHA, firstLine(commit.Message))

	if result.HadChanges {
		fmt.Printf("  %d archive files changed:\n", len(result.ChangedArchives))
		for _, f := range result.ChangedArchives {
			fmt.Printf("    %s\n", f)
		}
	} else {
		fmt.Println("  Already up to date")
	}

	fmt.Printf("\nArchive root: %s\n", syncer.ArchiveDir())
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
