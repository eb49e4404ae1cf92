// Package interaction defines the domain model shared by every layer of
// Callisto: the recorder captures into it, the anonymizer rewrites it,
// the archive codec projects it to and from the HAR wire schema, and
// repositories persist it.
//
// # Model
//
// An Interaction is a named, ordered list of Messages. Each Message is
// one request/response pair plus timing. Headers are kept as ordered
// name/value pairs rather than a map so that repeated header names and
// value order survive a round trip through the archive format.
//
// # Ownership
//
// Messages are exclusively owned by their Interaction. Code that hands
// an Interaction across a concurrency or persistence boundary clones it
// first; see Interaction.Clone.
package interaction
