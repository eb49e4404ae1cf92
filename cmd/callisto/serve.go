package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/server"
	"mercator-hq/callisto/pkg/telemetry/health"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only archive inspector API",
	Long: `Start the archive inspector HTTP server.

The inspector exposes stored archives read-only:
  GET /archives                 list interaction names
  GET /archives/{name}          full HAR document
  GET /archives/{name}/entries  per-exchange summary
  GET /healthz, /readyz         health probes
  GET /metrics                  Prometheus metrics (when enabled)

Examples:
  # Serve on the configured address
  callisto serve

  # Override the listen address
  callisto serve --listen 0.0.0.0:8750`,
	RunE: serveInspector,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
}

func serveInspector(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime()
	if err != nil {
		return err
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	checker := health.New(0)
	if cfg.Archive.Backend == "file" || cfg.Archive.Backend == "" {
		root := cfg.Archive.Root
		checker.RegisterCheck("archive_root", func(ctx context.Context) error {
			_, err := os.Stat(root)
			return err
		})
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	srv := server.New(&cfg.Server, repo, checker, collector)

	fmt.Printf("✓ Inspector listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.Start(context.Background()); err != nil {
		return cli.NewCommandError("serve", err)
	}

	fmt.Println("✓ Inspector stopped")
	return nil
}
