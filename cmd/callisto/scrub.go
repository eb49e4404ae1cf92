package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/repository"
)

var scrubCmd = &cobra.Command{
	Use:   "scrub [name...]",
	Short: "Re-apply the scrub rules to stored archives",
	Long: `Load stored interactions, re-apply the currently configured scrub
rules, and write each archive back in place.

Archives recorded under older scrub rules keep whatever those rules
missed; this command brings them up to the current rule set. Scrubbing
is idempotent, so re-running it on already-clean archives changes
nothing.

With name arguments, only those interactions are re-scrubbed. Without
arguments, every stored interaction is.

Examples:
  # Re-scrub everything
  callisto scrub

  # Re-scrub selected interactions
  callisto scrub checkout-flow login`,
	RunE: scrubArchives,
}

func init() {
	rootCmd.AddCommand(scrubCmd)
}

func scrubArchives(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime()
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	rewriter, ok := repo.(repository.Rewriter)
	if !ok {
		return cli.NewCommandError("scrub", fmt.Errorf("the %q backend does not support rewriting stored archives", cfg.Archive.Backend))
	}

	ctx := context.Background()

	names := args
	if len(names) == 0 {
		lister, ok := repo.(repository.Lister)
		if !ok {
			return cli.NewCommandError("scrub", fmt.Errorf("the %q backend does not support listing; pass interaction names explicitly", cfg.Archive.Backend))
		}
		names, err = lister.List(ctx)
		if err != nil {
			return cli.NewCommandError("scrub", err)
		}
	}

	if len(names) == 0 {
		fmt.Println("No stored interactions.")
		return nil
	}

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(names)))

	failed := 0
	for i, name := range names {
		if err := rescrubOne(ctx, repo, rewriter, name); err != nil {
			progress.Error(err)
			failed++
		}
		progress.Update(int64(i + 1))
	}
	progress.Finish()

	fmt.Printf("Re-scrubbed %d interactions, %d failed\n", len(names)-failed, failed)
	if failed > 0 {
		return cli.NewCommandError("scrub", fmt.Errorf("%d interactions failed", failed))
	}
	return nil
}

func rescrubOne(ctx context.Context, repo repository.Repository, rewriter repository.Rewriter, name string) error {
	in, err := repo.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	if _, err := rewriter.Rewrite(ctx, in); err != nil {
		return fmt.Errorf("rewriting %s: %w", name, err)
	}
	return nil
}
