package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/recorder"
	"mercator-hq/callisto/pkg/repository"
)

var recordFlags struct {
	name    string
	mode    string
	method  string
	data    string
	headers []string
}

var recordCmd = &cobra.Command{
	Use:   "record <url>",
	Short: "Send one request through a recording session",
	Long: `Send a single HTTP request through the recording engine.

In Record mode the request goes to the real network and the exchange
is scrubbed and stored under the interaction name. In Replay mode the
response comes from the stored archive without touching the network.
The default Auto mode records on the first run and replays afterwards.

Examples:
  # Record (or replay, if already recorded) a GET
  callisto record --name checkout-flow https://api.example.com/cart

  # Force re-recording with a POST body
  CALLISTO_MODE=Record callisto record --name checkout-flow \
    --method POST --data '{"item":"sku-1"}' \
    --header "Content-Type: application/json" \
    https://api.example.com/cart`,
	Args: cobra.ExactArgs(1),
	RunE: recordRequest,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().StringVarP(&recordFlags.name, "name", "n", "", "interaction name (required)")
	recordCmd.Flags().StringVar(&recordFlags.mode, "mode", "", "execution mode: Passthrough, Record, Replay, Auto (uses config if not specified)")
	recordCmd.Flags().StringVarP(&recordFlags.method, "method", "X", "GET", "HTTP method")
	recordCmd.Flags().StringVarP(&recordFlags.data, "data", "d", "", "request body")
	recordCmd.Flags().StringArrayVarP(&recordFlags.headers, "header", "H", nil, `request header ("Name: Value", repeatable)`)
	_ = recordCmd.MarkFlagRequired("name")
}

func recordRequest(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime()
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	modeStr := recordFlags.mode
	if modeStr == "" {
		modeStr = cfg.Recorder.Mode
	}
	mode, err := recorder.ParseMode(modeStr)
	if err != nil {
		return cli.NewConfigError("recorder.mode", err.Error())
	}

	session, err := recorder.Start(recorder.Config{
		Name:       recordFlags.name,
		Mode:       mode,
		Repository: repo,
	})
	if err != nil {
		return cli.NewCommandError("record", err)
	}
	defer session.Release()

	ctx := context.Background()

	var body io.Reader
	if recordFlags.data != "" {
		body = strings.NewReader(recordFlags.data)
	}
	req, err := http.NewRequestWithContext(ctx, recordFlags.method, args[0], body)
	if err != nil {
		return cli.NewCommandError("record", err)
	}
	for _, h := range recordFlags.headers {
		name, value, found := strings.Cut(h, ":")
		if !found {
			return fmt.Errorf("malformed header %q (expected \"Name: Value\")", h)
		}
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	resp, err := session.Client().Do(req)
	if err != nil {
		return cli.NewCommandError("record", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return cli.NewCommandError("record", err)
	}

	resolved, err := session.Mode(ctx)
	if err != nil {
		return cli.NewCommandError("record", err)
	}

	fmt.Printf("✓ %s %s -> %s (%d bytes, mode %s)\n",
		req.Method, req.URL, resp.Status, len(respBody), resolved)

	if fileRepo, ok := repo.(*repository.FileRepository); ok && resolved == recorder.Record {
		fmt.Printf("  Archive: %s\n", fileRepo.ArchivePath(recordFlags.name))
	}

	return nil
}
