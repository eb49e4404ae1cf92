// Package scrub redacts sensitive data from interactions before they
// are persisted or re-persisted.
//
// Header rules replace whole values of credential-bearing headers with a
// fixed sentinel. Body rules mask pattern-matched secrets
// character-for-character, so payload lengths (and any size signatures a
// test asserts on) are undisturbed. Scrubbing is idempotent and never
// fails: bodies a rule cannot parse are simply left alone.
package scrub
