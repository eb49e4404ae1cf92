package repository

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/interaction"
)

// TestLogRepository_StoreEmits tests that captures become scrubbed log
// records when the level is enabled.
func TestLogRepository_StoreEmits(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo := NewLogRepository(logger, slog.LevelInfo, nil)

	in := interaction.New("traced call")
	msg := testMessage(0)
	msg.Request.Headers = append(msg.Request.Headers,
		interaction.Header{Name: "Authorization", Value: "Bearer hunter2"})
	in.Append(msg)
	in.Append(testMessage(1))

	result, err := repo.Store(context.Background(), in)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !result.Persisted {
		t.Error("Expected Persisted=true when the level is enabled")
	}
	if result.Entries != 2 {
		t.Errorf("Expected 2 entries, got %d", result.Entries)
	}

	out := buf.String()
	if !strings.Contains(out, "captured exchange") {
		t.Errorf("Expected log records, got:\n%s", out)
	}
	if !strings.Contains(out, "traced call") {
		t.Errorf("Expected interaction name in log, got:\n%s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("Expected secret scrubbed from log, got:\n%s", out)
	}
	if !strings.Contains(out, "***") {
		t.Errorf("Expected mask sentinel in log, got:\n%s", out)
	}
}

// TestLogRepository_DisabledLevel tests that nothing is emitted or reported
// stored when the logger does not enable the configured level.
func TestLogRepository_DisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := NewLogRepository(logger, slog.LevelDebug, nil)

	result, err := repo.Store(context.Background(), testInteraction("silent", 1))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if result.Persisted {
		t.Error("Expected Persisted=false when the level is disabled")
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no log output, got:\n%s", buf.String())
	}
}

// TestLogRepository_StoreEmpty tests that an empty interaction emits
// nothing.
func TestLogRepository_StoreEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo := NewLogRepository(logger, slog.LevelInfo, nil)

	result, err := repo.Store(context.Background(), interaction.New("empty"))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if result.Persisted {
		t.Error("Expected Persisted=false for empty interaction")
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no log output, got:\n%s", buf.String())
	}
}

// TestLogRepository_WriteOnly tests that the log sink can never satisfy
// lookups.
func TestLogRepository_WriteOnly(t *testing.T) {
	repo := NewLogRepository(nil, slog.LevelInfo, nil)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "anything")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("Expected Exists=false")
	}

	_, err = repo.Load(ctx, "anything")
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported from Load, got %v", err)
	}
}
