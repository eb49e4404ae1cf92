package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/interaction"
)

var inspectFlags struct {
	format string
}

// entrySummary is one exchange in the inspect output.
type entrySummary struct {
	Sequence      int       `json:"sequence"`
	Method        string    `json:"method"`
	URL           string    `json:"url"`
	Status        int       `json:"status"`
	Started       time.Time `json:"started"`
	ElapsedMS     float64   `json:"elapsedMs"`
	RequestBytes  int       `json:"requestBytes"`
	ResponseBytes int       `json:"responseBytes"`
}

// interactionSummary is the inspect output for one archive.
type interactionSummary struct {
	Name    string         `json:"name"`
	Entries []entrySummary `json:"entries"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <name>",
	Short: "Summarize a recorded archive",
	Long: `Load the named interaction from the configured archive backend and
print a per-exchange summary: method, URL, status, start time, elapsed
duration, and body sizes.

Examples:
  # Plain text summary
  callisto inspect checkout-flow

  # Machine-readable output
  callisto inspect checkout-flow --format json
  callisto inspect checkout-flow --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: inspectArchive,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectFlags.format, "format", "text", "output format: text, json, csv")
}

func inspectArchive(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime()
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	in, err := repo.Load(context.Background(), args[0])
	if err != nil {
		return cli.NewCommandError("inspect", err)
	}

	summary := summarize(in)

	switch cli.OutputFormat(inspectFlags.format) {
	case cli.FormatJSON:
		formatter := &cli.JSONFormatter{Indent: true}
		return formatter.FormatTo(os.Stdout, summary)

	case cli.FormatCSV:
		formatter := &cli.CSVFormatter{
			Headers: []string{"sequence", "method", "url", "status", "started", "elapsed_ms", "request_bytes", "response_bytes"},
		}
		rows := make([][]string, 0, len(summary.Entries))
		for _, e := range summary.Entries {
			rows = append(rows, []string{
				strconv.Itoa(e.Sequence),
				e.Method,
				e.URL,
				strconv.Itoa(e.Status),
				e.Started.Format(time.RFC3339),
				strconv.FormatFloat(e.ElapsedMS, 'f', 1, 64),
				strconv.Itoa(e.RequestBytes),
				strconv.Itoa(e.ResponseBytes),
			})
		}
		return formatter.FormatTo(os.Stdout, rows)

	case cli.FormatText, "":
		fmt.Printf("Interaction: %s\n", summary.Name)
		fmt.Printf("Entries: %d\n\n", len(summary.Entries))
		for _, e := range summary.Entries {
			fmt.Printf("  #%02d %s %s -> %d (%.1fms, %dB request, %dB response)\n",
				e.Sequence, e.Method, e.URL, e.Status, e.ElapsedMS, e.RequestBytes, e.ResponseBytes)
		}
		return nil

	default:
		return fmt.Errorf("unsupported format: %s", inspectFlags.format)
	}
}

func summarize(in *interaction.Interaction) interactionSummary {
	summary := interactionSummary{
		Name:    in.Name,
		Entries: make([]entrySummary, 0, len(in.Messages)),
	}
	for i, msg := range in.Messages {
		summary.Entries = append(summary.Entries, entrySummary{
			Sequence:      i + 1,
			Method:        msg.Request.Method,
			URL:           msg.Request.URL,
			Status:        msg.Response.Status,
			Started:       msg.Started,
			ElapsedMS:     float64(msg.Elapsed) / float64(time.Millisecond),
			RequestBytes:  len(msg.Request.Body),
			ResponseBytes: len(msg.Response.Body),
		})
	}
	return summary
}
