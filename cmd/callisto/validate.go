package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/archive"
	"mercator-hq/callisto/pkg/cli"
)

var validateFlags struct {
	root   string
	format string
}

// validationResult is the outcome of checking one archive file.
type validationResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Schema-check recorded archives",
	Long: `Verify that archive files parse as valid HAR documents.

With file arguments, only those files are checked. Without arguments,
every .har file under the configured archive root is checked. The
command exits non-zero when any archive is malformed; malformed
archives are reported, never repaired.

Examples:
  # Check every archive under the configured root
  callisto validate

  # Check specific files
  callisto validate .callisto/trace/checkout-flow/checkout-flow.har

  # Machine-readable report
  callisto validate --format json`,
	RunE: validateArchives,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.root, "root", "", "archive root to scan (uses config if not specified)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateArchives(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 {
		root := validateFlags.root
		if root == "" {
			cfg, err := initRuntime()
			if err != nil {
				return err
			}
			root = cfg.Archive.Root
		}

		found, err := findArchiveFiles(root)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		files = found
	}

	if len(files) == 0 {
		fmt.Println("No archives found.")
		return nil
	}

	results := make([]validationResult, 0, len(files))
	invalid := 0
	for _, path := range files {
		result := validateOne(path)
		if !result.Valid {
			invalid++
		}
		results = append(results, result)
	}

	if cli.OutputFormat(validateFlags.format) == cli.FormatJSON {
		formatter := &cli.JSONFormatter{Indent: true}
		if err := formatter.FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s (%d entries)\n", r.Path, r.Entries)
			} else {
				fmt.Printf("✗ %s: %s\n", r.Path, r.Error)
			}
		}
		fmt.Printf("\n%d archives checked, %d malformed\n", len(results), invalid)
	}

	if invalid > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("%d malformed archives", invalid))
	}
	return nil
}

// validateOne decodes a single archive file and projects its entries
// back into interactions, so both the schema and the projection are
// exercised.
func validateOne(path string) validationResult {
	result := validationResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	a, err := archive.Decode(data)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if _, err := a.Interactions(); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Valid = true
	result.Entries = len(a.Log.Entries)
	return result
}

func findArchiveFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".har") {
			files = append(files, path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return files, err
}
