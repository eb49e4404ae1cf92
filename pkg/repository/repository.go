package repository

import (
	"context"
	"time"

	"mercator-hq/callisto/pkg/interaction"
)

// Repository is the persistence boundary for interactions. Variants are
// interchangeable: the archive-file store is canonical, the log sink
// traces without persisting, the null store disables recording, and the
// SQLite store keeps archives in a database. Implementations share no
// state; they are selected at construction time.
type Repository interface {
	// Exists reports whether a stored interaction with the given name
	// can be loaded. Auto mode resolution is built on this check.
	Exists(ctx context.Context, name string) (bool, error)

	// Load retrieves the named interaction. It fails with
	// NoSuchInteractionError when nothing is stored under the name and
	// with MalformedArchiveError when the stored form does not parse.
	Load(ctx context.Context, name string) (*interaction.Interaction, error)

	// Store persists the interaction, applying the configured
	// scrubbing first. A disabled or non-capturing variant returns
	// Persisted=false rather than an error, so callers never re-store
	// or misreport captures that were intentionally dropped. An
	// interaction with no messages is never persisted.
	Store(ctx context.Context, in *interaction.Interaction) (*StoreResult, error)
}

// StoreResult reports what a Store call did. Persisted=false is the
// "nothing stored" sentinel, not a failure.
type StoreResult struct {
	// Persisted is true when the interaction reached durable storage.
	Persisted bool

	// Path locates the stored archive (file path, database path, or
	// empty for sinks without an address).
	Path string

	// Entries is the number of entries this call persisted.
	Entries int
}

// Lister is an optional capability: repositories that can enumerate
// their stored interaction names implement it. The inspector API and
// CLI feature-detect it.
type Lister interface {
	// List returns stored interaction names in a stable order.
	List(ctx context.Context) ([]string, error)
}

// Pruneable is an optional capability: repositories that can delete
// interactions older than a cutoff implement it. The retention scheduler
// feature-detects it.
type Pruneable interface {
	// PruneBefore removes every interaction whose newest message
	// started before the cutoff. It returns the number of
	// interactions removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Rewriter is an optional capability: repositories that can replace a
// stored interaction wholesale implement it. Re-anonymization runs
// through it: archives recorded under older scrub rules are loaded,
// re-scrubbed with the current rules, and written back without
// appending.
type Rewriter interface {
	// Rewrite scrubs the interaction and replaces whatever is stored
	// under its name.
	Rewrite(ctx context.Context, in *interaction.Interaction) (*StoreResult, error)
}
