package repository

import (
	"context"
	"errors"
	"testing"
)

// TestNullRepository_DropsEverything tests that the null variant stores
// nothing and reports nothing stored.
func TestNullRepository_DropsEverything(t *testing.T) {
	repo := NewNullRepository()
	ctx := context.Background()

	result, err := repo.Store(ctx, testInteraction("dropped", 2))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if result.Persisted {
		t.Error("Expected Persisted=false")
	}

	ok, err := repo.Exists(ctx, "dropped")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("Expected Exists=false")
	}

	var noSuch *NoSuchInteractionError
	if _, err := repo.Load(ctx, "dropped"); !errors.As(err, &noSuch) {
		t.Errorf("Expected NoSuchInteractionError, got %v", err)
	}
}
