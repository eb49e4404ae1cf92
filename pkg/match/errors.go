package match

import "fmt"

// NoMatchingInteractionError indicates the archive was found but no
// recorded message satisfies the live request. It carries the attempted
// method and URL so test failures point at the exact call. Matching is
// never retried; replay cannot substitute a different recording.
type NoMatchingInteractionError struct {
	// Method is the live request's HTTP method.
	Method string

	// URL is the live request's full URL.
	URL string

	// Interaction is the name of the interaction that was searched.
	Interaction string
}

// Error returns a formatted error message.
func (e *NoMatchingInteractionError) Error() string {
	return fmt.Sprintf("no matching interaction [method=%s, url=%s, interaction=%s]",
		e.Method, e.URL, e.Interaction)
}

// NewNoMatchingInteractionError creates a new NoMatchingInteractionError.
func NewNoMatchingInteractionError(method, url, name string) *NoMatchingInteractionError {
	return &NoMatchingInteractionError{Method: method, URL: url, Interaction: name}
}
