// Package repository persists and retrieves recorded interactions.
//
// # Variants
//
// Four implementations share the Repository interface. FileRepository is the
// canonical one: each interaction becomes an HTTP Archive (HAR) file under
// <root>/trace, optionally accompanied by human-readable text dumps.
// SQLiteRepository keeps every interaction in one database file for setups
// that prefer a single artifact. LogRepository emits captured exchanges to
// the structured log and never persists. NullRepository discards
// everything; it backs passthrough mode and benchmarks.
//
// # Concurrency
//
// Writers are serialized per archive identity. FileRepository keys a
// process-wide lock registry by archive path, so concurrent stores against
// the same interaction name append in some serial order and stores against
// different names proceed in parallel. Archive files are written to a
// temporary file and renamed into place, so a reader never observes a
// partially written archive. SQLiteRepository relies on a single writer
// connection and transactions for the same guarantee.
//
// # Names
//
// Interaction names are arbitrary strings. File and directory names derived
// from them are sanitized, but the exact name always travels inside the
// archive itself, so lookups and listings are exact even when two names
// collide after sanitization is applied to build the path.
//
// # Watching
//
// ArchiveWatcher reports debounced change notifications for archives
// modified outside the process, keyed by the affected interaction names.
package repository
