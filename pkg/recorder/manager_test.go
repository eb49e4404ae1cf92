package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mercator-hq/callisto/pkg/interaction"
	"mercator-hq/callisto/pkg/repository"
)

// stubRepository is a controllable Repository for session and transport
// tests. Unset functions fall back to an empty in-memory store.
type stubRepository struct {
	existsFn func(ctx context.Context, name string) (bool, error)
	loadFn   func(ctx context.Context, name string) (*interaction.Interaction, error)
	storeFn  func(ctx context.Context, in *interaction.Interaction) (*repository.StoreResult, error)

	mu          sync.Mutex
	existsCalls int
	storeCalls  int
	stored      []*interaction.Interaction
}

func (s *stubRepository) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	s.existsCalls++
	s.mu.Unlock()
	if s.existsFn != nil {
		return s.existsFn(ctx, name)
	}
	return false, nil
}

func (s *stubRepository) Load(ctx context.Context, name string) (*interaction.Interaction, error) {
	if s.loadFn != nil {
		return s.loadFn(ctx, name)
	}
	return nil, repository.NewNoSuchInteractionError(name, "stub")
}

func (s *stubRepository) Store(ctx context.Context, in *interaction.Interaction) (*repository.StoreResult, error) {
	s.mu.Lock()
	s.storeCalls++
	s.stored = append(s.stored, in.Clone())
	s.mu.Unlock()
	if s.storeFn != nil {
		return s.storeFn(ctx, in)
	}
	return &repository.StoreResult{Persisted: true, Entries: len(in.Messages)}, nil
}

func (s *stubRepository) storedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeCalls
}

func TestManager_Acquire_Validation(t *testing.T) {
	m := NewManager()

	if _, err := m.Acquire(Config{Repository: &stubRepository{}}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := m.Acquire(Config{Name: "checkout"}); err == nil {
		t.Error("expected error for missing repository")
	}
}

func TestManager_SingleActiveContext(t *testing.T) {
	m := NewManager()
	repo := &stubRepository{}

	first, err := m.Acquire(Config{Name: "checkout", Repository: repo})
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	_, err = m.Acquire(Config{Name: "orders", Repository: repo})
	if err == nil {
		t.Fatal("expected second acquire to fail")
	}

	var active *MultipleActiveContextsError
	if !errors.As(err, &active) {
		t.Fatalf("expected MultipleActiveContextsError, got %T: %v", err, err)
	}
	if active.ActiveName != "checkout" {
		t.Errorf("expected active name checkout, got %q", active.ActiveName)
	}
	if active.AttemptedName != "orders" {
		t.Errorf("expected attempted name orders, got %q", active.AttemptedName)
	}

	// The failed acquisition leaves the active session untouched.
	if got := m.Active(); got != "checkout" {
		t.Errorf("expected active session checkout, got %q", got)
	}

	first.Release()
	if got := m.Active(); got != "" {
		t.Errorf("expected no active session after release, got %q", got)
	}

	second, err := m.Acquire(Config{Name: "orders", Repository: repo})
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	second.Release()
}

func TestManager_ReleaseIsIdempotent(t *testing.T) {
	m := NewManager()
	repo := &stubRepository{}

	first, err := m.Acquire(Config{Name: "checkout", Repository: repo})
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	first.Release()
	first.Release()

	second, err := m.Acquire(Config{Name: "orders", Repository: repo})
	if err != nil {
		t.Fatalf("acquire after double release failed: %v", err)
	}

	// A stale release of the first session must not free the slot the
	// second session now holds.
	first.Release()
	if got := m.Active(); got != "orders" {
		t.Errorf("expected orders to stay active, got %q", got)
	}
	second.Release()
}

func TestManager_Active_Empty(t *testing.T) {
	m := NewManager()
	if got := m.Active(); got != "" {
		t.Errorf("expected empty active name, got %q", got)
	}
}

func TestStart_UsesDefaultManager(t *testing.T) {
	session, err := Start(Config{Name: "default-manager-session", Repository: &stubRepository{}})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer session.Release()

	if got := defaultManager.Active(); got != "default-manager-session" {
		t.Errorf("expected session on default manager, got %q", got)
	}
}
