package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mercator-hq/callisto/pkg/interaction"
)

// newTestSQLiteRepository creates a repository backed by a temporary
// database. Checkpointing is effectively disabled so tests stay quiet.
func newTestSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(SQLiteConfig{
		Path:               filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout:        5 * time.Second,
		CheckpointInterval: time.Hour,
	}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create SQLite repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// TestSQLiteRepository_StoreAndLoad tests that a stored interaction loads
// back identical.
func TestSQLiteRepository_StoreAndLoad(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	in := testInteraction("orders list", 2)
	result, err := repo.Store(ctx, in)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !result.Persisted {
		t.Fatal("Expected Persisted=true")
	}
	if result.Entries != 2 {
		t.Errorf("Expected 2 entries stored, got %d", result.Entries)
	}
	if result.Path != repo.config.Path {
		t.Errorf("Expected path %s, got %s", repo.config.Path, result.Path)
	}

	loaded, err := repo.Load(ctx, "orders list")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(in, loaded); diff != "" {
		t.Errorf("Loaded interaction differs (-want +got):\n%s", diff)
	}
}

// TestSQLiteRepository_LoadMissing tests the error for an unknown name.
func TestSQLiteRepository_LoadMissing(t *testing.T) {
	repo := newTestSQLiteRepository(t)

	_, err := repo.Load(context.Background(), "never recorded")
	var noSuch *NoSuchInteractionError
	if !errors.As(err, &noSuch) {
		t.Fatalf("Expected NoSuchInteractionError, got %T: %v", err, err)
	}
	if noSuch.Backend != "sqlite" {
		t.Errorf("Expected backend %q, got %q", "sqlite", noSuch.Backend)
	}
}

// TestSQLiteRepository_AppendSequencing tests that repeated stores extend
// the interaction in recording order.
func TestSQLiteRepository_AppendSequencing(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	first := interaction.New("session")
	first.Append(testMessage(0))
	first.Append(testMessage(1))
	second := interaction.New("session")
	second.Append(testMessage(2))

	if _, err := repo.Store(ctx, first); err != nil {
		t.Fatalf("Store first failed: %v", err)
	}
	if _, err := repo.Store(ctx, second); err != nil {
		t.Fatalf("Store second failed: %v", err)
	}

	loaded, err := repo.Load(ctx, "session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(loaded.Messages))
	}
	for i, msg := range loaded.Messages {
		if want := fmt.Sprintf("response %d", i); string(msg.Response.Body) != want {
			t.Errorf("Message %d out of order: body %q, want %q", i, msg.Response.Body, want)
		}
	}
}

// TestSQLiteRepository_Exists tests existence before and after a store.
func TestSQLiteRepository_Exists(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "checkout")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("Expected Exists=false before store")
	}

	if _, err := repo.Store(ctx, testInteraction("checkout", 1)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	ok, err = repo.Exists(ctx, "checkout")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("Expected Exists=true after store")
	}
}

// TestSQLiteRepository_StoreEmpty tests that an empty interaction is never
// persisted.
func TestSQLiteRepository_StoreEmpty(t *testing.T) {
	repo := newTestSQLiteRepository(t)

	result, err := repo.Store(context.Background(), interaction.New("empty"))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if result.Persisted {
		t.Error("Expected Persisted=false for empty interaction")
	}
}

// TestSQLiteRepository_ScrubOnStore tests that secrets are masked before
// rows are written.
func TestSQLiteRepository_ScrubOnStore(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	in := interaction.New("login")
	msg := testMessage(0)
	msg.Request.Headers = append(msg.Request.Headers,
		interaction.Header{Name: "Authorization", Value: "Bearer hunter2"})
	in.Append(msg)

	if _, err := repo.Store(ctx, in); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	loaded, err := repo.Load(ctx, "login")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := interaction.HeaderGet(loaded.Messages[0].Request.Headers, "Authorization"); got != "***" {
		t.Errorf("Expected masked Authorization header, got %q", got)
	}
}

// TestSQLiteRepository_List tests stable listing of stored names.
func TestSQLiteRepository_List(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	for _, name := range []string{"beta", "alpha"} {
		if _, err := repo.Store(ctx, testInteraction(name, 1)); err != nil {
			t.Fatalf("Store %q failed: %v", name, err)
		}
	}

	names, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]string{"alpha", "beta"}, names); diff != "" {
		t.Errorf("List differs (-want +got):\n%s", diff)
	}
}

// TestSQLiteRepository_PruneBefore tests removal of interactions whose
// newest exchange is older than the cutoff.
func TestSQLiteRepository_PruneBefore(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	if _, err := repo.Store(ctx, testInteraction("stale", 1)); err != nil {
		t.Fatalf("Store stale failed: %v", err)
	}
	fresh := interaction.New("fresh")
	msg := testMessage(0)
	msg.Started = time.Now()
	fresh.Append(msg)
	if _, err := repo.Store(ctx, fresh); err != nil {
		t.Fatalf("Store fresh failed: %v", err)
	}

	pruned, err := repo.PruneBefore(ctx, captureTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("Expected 1 pruned interaction, got %d", pruned)
	}

	ok, err := repo.Exists(ctx, "stale")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("Expected stale interaction removed")
	}
	ok, err = repo.Exists(ctx, "fresh")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("Expected fresh interaction to survive the prune")
	}
}

// TestSQLiteRepository_ConcurrentStores tests that concurrent stores under
// one name each land exactly once.
func TestSQLiteRepository_ConcurrentStores(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()
	const stores = 8

	var wg sync.WaitGroup
	wg.Add(stores)
	for i := 0; i < stores; i++ {
		go func(i int) {
			defer wg.Done()
			in := interaction.New("concurrent")
			msg := testMessage(i)
			msg.Response.Body = []byte(fmt.Sprintf("payload %d", i))
			msg.Response.ContentLength = int64(len(msg.Response.Body))
			in.Append(msg)
			if _, err := repo.Store(ctx, in); err != nil {
				t.Errorf("Concurrent store %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	loaded, err := repo.Load(ctx, "concurrent")
	if err != nil {
		t.Fatalf("Load after concurrent stores failed: %v", err)
	}
	if len(loaded.Messages) != stores {
		t.Fatalf("Expected %d messages, got %d", stores, len(loaded.Messages))
	}
	seen := make(map[string]bool)
	for _, msg := range loaded.Messages {
		seen[string(msg.Response.Body)] = true
	}
	for i := 0; i < stores; i++ {
		if !seen[fmt.Sprintf("payload %d", i)] {
			t.Errorf("Store %d left no row", i)
		}
	}
}

// TestSQLiteRepository_Persistence tests that interactions survive a close
// and reopen of the same database file.
func TestSQLiteRepository_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	repo1, err := NewSQLiteRepository(SQLiteConfig{Path: path}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	if _, err := repo1.Store(ctx, testInteraction("durable", 1)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := repo1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	repo2, err := NewSQLiteRepository(SQLiteConfig{Path: path}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to reopen repository: %v", err)
	}
	defer repo2.Close()

	loaded, err := repo2.Load(ctx, "durable")
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if len(loaded.Messages) != 1 {
		t.Errorf("Expected 1 message after reopen, got %d", len(loaded.Messages))
	}
}

// TestSQLiteRepository_Close tests that Close is idempotent.
func TestSQLiteRepository_Close(t *testing.T) {
	repo, err := NewSQLiteRepository(SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "close.db"),
	}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	if err := repo.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

// TestSQLiteRepository_EmptyPath tests construction validation.
func TestSQLiteRepository_EmptyPath(t *testing.T) {
	repo, err := NewSQLiteRepository(SQLiteConfig{}, nil, nil)
	if err == nil {
		repo.Close()
		t.Fatal("Expected error for empty path, got nil")
	}
}

// TestSQLiteRepository_Rewrite tests that Rewrite replaces the stored rows
// for one name and leaves other interactions alone.
func TestSQLiteRepository_Rewrite(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	if _, err := repo.Store(ctx, testInteraction("session", 3)); err != nil {
		t.Fatalf("Store session failed: %v", err)
	}
	if _, err := repo.Store(ctx, testInteraction("other", 1)); err != nil {
		t.Fatalf("Store other failed: %v", err)
	}

	result, err := repo.Rewrite(ctx, testInteraction("session", 1))
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if result.Entries != 1 {
		t.Errorf("Expected 1 entry after rewrite, got %d", result.Entries)
	}

	loaded, err := repo.Load(ctx, "session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Messages) != 1 {
		t.Errorf("Expected exactly the rewritten message, got %d", len(loaded.Messages))
	}

	other, err := repo.Load(ctx, "other")
	if err != nil {
		t.Fatalf("Load other failed: %v", err)
	}
	if len(other.Messages) != 1 {
		t.Errorf("Expected other untouched with 1 message, got %d", len(other.Messages))
	}
}
