// Package cli holds helpers shared by the callisto commands: output
// formatting for command results, progress reporting for sweeps over
// many archives, typed command errors, and signal-aware contexts.
package cli
