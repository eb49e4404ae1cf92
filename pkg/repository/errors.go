package repository

import "fmt"

// NoSuchInteractionError indicates a Load for a name with nothing stored
// under it. Under Auto mode resolution this cannot normally happen; an
// explicit Replay against a missing archive is a caller error.
type NoSuchInteractionError struct {
	// Name is the requested interaction name.
	Name string

	// Backend identifies the repository variant.
	Backend string
}

// Error returns a formatted error message.
func (e *NoSuchInteractionError) Error() string {
	return fmt.Sprintf("no such interaction [name=%s, backend=%s]", e.Name, e.Backend)
}

// NewNoSuchInteractionError creates a new NoSuchInteractionError.
func NewNoSuchInteractionError(name, backend string) *NoSuchInteractionError {
	return &NoSuchInteractionError{Name: name, Backend: backend}
}

// StorageError indicates a persistence I/O failure: disk full,
// permission denied, or an encode/decode fault. It wraps the root cause.
type StorageError struct {
	// Backend identifies the repository variant ("file", "sqlite",
	// "log").
	Backend string

	// Operation is what failed ("store", "load", "exists", "prune").
	Operation string

	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
