package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/archive"
	"mercator-hq/callisto/pkg/interaction"
)

func writeValidArchive(t *testing.T, path string) {
	t.Helper()

	in := interaction.New("checkout-flow")
	in.Append(interaction.Message{
		Request: interaction.Request{
			Method: "GET",
			URL:    "https://api.example.com/cart",
		},
		Response: interaction.Response{
			Status:     200,
			StatusText: "200 OK",
			Body:       []byte(`{"items":[]}`),
		},
		Started: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Elapsed: 25 * time.Millisecond,
	})

	data, err := archive.Encode(archive.Build(in))
	if err != nil {
		t.Fatalf("encoding archive: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
}

func TestValidateOne_ValidArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkout-flow.har")
	writeValidArchive(t, path)

	result := validateOne(path)
	if !result.Valid {
		t.Fatalf("validateOne() reported malformed: %s", result.Error)
	}
	if result.Entries != 1 {
		t.Errorf("Entries = %d, want 1", result.Entries)
	}
}

func TestValidateOne_MalformedArchive(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad JSON", `{"log":`},
		{"unknown version", `{"log":{"version":"9.9","creator":{"name":"x","version":"0"},"entries":[]}}`},
		{"missing log", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.har")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			result := validateOne(path)
			if result.Valid {
				t.Error("validateOne() should report malformed")
			}
			if result.Error == "" {
				t.Error("result should carry the parse error")
			}
		})
	}
}

func TestValidateOne_MissingFile(t *testing.T) {
	result := validateOne(filepath.Join(t.TempDir(), "absent.har"))
	if result.Valid {
		t.Error("validateOne() should fail for a missing file")
	}
}

func TestValidateArchives_ExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.har")
	writeValidArchive(t, good)

	if err := validateArchives(nil, []string{good}); err != nil {
		t.Errorf("validateArchives() with valid file returned error: %v", err)
	}

	bad := filepath.Join(dir, "bad.har")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := validateArchives(nil, []string{good, bad}); err == nil {
		t.Error("validateArchives() with a malformed file should return error")
	}
}

func TestFindArchiveFiles(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "trace", "checkout-flow")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeValidArchive(t, filepath.Join(sub, "checkout-flow.har"))
	if err := os.WriteFile(filepath.Join(sub, "0001.txt"), []byte("dump"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := findArchiveFiles(root)
	if err != nil {
		t.Fatalf("findArchiveFiles() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("found %d files, want 1 (.txt dumps must be skipped)", len(files))
	}
}

func TestFindArchiveFiles_MissingRoot(t *testing.T) {
	files, err := findArchiveFiles(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("findArchiveFiles() on a missing root should not error, got %v", err)
	}
	if len(files) != 0 {
		t.Errorf("found %d files, want 0", len(files))
	}
}
