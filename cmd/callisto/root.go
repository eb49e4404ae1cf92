package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - HTTP interaction record/replay engine",
	Long: `Callisto records outgoing HTTP exchanges to HAR archives and replays
them later instead of contacting the network, making integration tests
against external HTTP services deterministic and offline-capable.

The CLI manages recorded archives:
  - Record a request, inspect and validate archives
  - Re-apply scrub rules to already-recorded data
  - Prune old recordings and sync shared archives via Git
  - Watch the archive tree and serve the read-only inspector API`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "callisto.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
