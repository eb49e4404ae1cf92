package recorder

import "fmt"

// MultipleActiveContextsError indicates an attempt to acquire a session
// while another is active on the same Manager. The active session is
// unaffected; only the new acquisition fails.
type MultipleActiveContextsError struct {
	// ActiveName is the interaction name of the session holding the
	// slot.
	ActiveName string

	// AttemptedName is the interaction name of the rejected
	// acquisition.
	AttemptedName string
}

// Error returns a formatted error message.
func (e *MultipleActiveContextsError) Error() string {
	return fmt.Sprintf("another recording context is active [active=%s, attempted=%s]", e.ActiveName, e.AttemptedName)
}

// NewMultipleActiveContextsError creates a new MultipleActiveContextsError.
func NewMultipleActiveContextsError(activeName, attemptedName string) *MultipleActiveContextsError {
	return &MultipleActiveContextsError{ActiveName: activeName, AttemptedName: attemptedName}
}
