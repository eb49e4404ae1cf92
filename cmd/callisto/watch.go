package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/repository"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the archive tree and report changes",
	Long: `Watch the configured archive root for .har file changes and print
the names of the interactions that changed. Changes are debounced, so
one recording burst reports once.

Useful while recording: leave the watcher running in a terminal to see
archives land as the test suite captures them. Stop with Ctrl+C.`,
	RunE: watchArchives,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watchArchives(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime()
	if err != nil {
		return err
	}

	if cfg.Archive.Backend != "file" {
		return cli.NewConfigError("archive.backend", "watching requires the file backend")
	}

	watcher, err := repository.NewArchiveWatcher(repository.DefaultWatcherConfig(cfg.Archive.Root), nil)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	if err := watcher.Watch(func(names []string) {
		for _, name := range names {
			fmt.Printf("changed: %s\n", name)
		}
	}); err != nil {
		return cli.NewCommandError("watch", err)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.Archive.Root)

	ctx := cli.SetupSignalHandler()
	<-ctx.Done()

	return watcher.Stop()
}
