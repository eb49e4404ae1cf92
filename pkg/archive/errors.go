package archive

import "fmt"

// MalformedArchiveError indicates on-disk data that fails schema
// validation: unparseable JSON, an unrecognized format version, or an
// entry missing required fields. The data is never auto-repaired.
type MalformedArchiveError struct {
	// Reason describes the validation failure.
	Reason string

	// Version is the rejected format version, when that is the reason.
	Version string

	// Cause is the underlying decode error, if any.
	Cause error
}

// Error returns a formatted error message.
func (e *MalformedArchiveError) Error() string {
	msg := fmt.Sprintf("malformed archive: %s", e.Reason)
	if e.Version != "" {
		msg = fmt.Sprintf("malformed archive: %s [version=%s]", e.Reason, e.Version)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *MalformedArchiveError) Unwrap() error {
	return e.Cause
}

// NewMalformedArchiveError creates a new MalformedArchiveError.
func NewMalformedArchiveError(reason string, cause error) *MalformedArchiveError {
	return &MalformedArchiveError{Reason: reason, Cause: cause}
}
