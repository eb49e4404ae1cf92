package repository

import (
	"context"

	"mercator-hq/callisto/pkg/interaction"
)

const nullBackend = "null"

// NullRepository disables recording administratively: every operation is
// a no-op returning neutral values.
type NullRepository struct{}

// NewNullRepository creates a null repository.
func NewNullRepository() *NullRepository {
	return &NullRepository{}
}

// Exists always reports false.
func (r *NullRepository) Exists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

// Load always fails with NoSuchInteractionError: nothing is ever stored.
func (r *NullRepository) Load(ctx context.Context, name string) (*interaction.Interaction, error) {
	return nil, NewNoSuchInteractionError(name, nullBackend)
}

// Store reports nothing stored.
func (r *NullRepository) Store(ctx context.Context, in *interaction.Interaction) (*StoreResult, error) {
	return &StoreResult{Persisted: false}, nil
}
