// Package archive implements the durable form of recorded interactions:
// HTTP Archive (HAR) 1.2 JSON.
//
// # Layout
//
// An archive is a log header plus an ordered list of entries, one entry
// per captured Message. Interaction names ride on HAR pages: each
// interaction contributes a page whose id is the exact name, and its
// entries reference it through pageref. A file holding one interaction
// therefore looks like any other HAR file, and an aggregate file holding
// many interactions needs no schema extensions.
//
// # Round trip
//
// Build and Interactions are inverse projections: decoding an encoded
// archive yields messages equal in method, URL, status, headers, and
// body to the originals. Binary bodies are carried as base64 text with
// an explicit encoding flag; valid UTF-8 bodies are stored as-is.
//
// # Appending
//
// The correctness baseline for growing an archive on disk is always
// decode, AddInteraction, re-encode. SpliceEntries is an optional fast
// path that splices new entries before the file's closing bytes; it
// refuses anything whose tail it does not recognize and its output is
// byte-identical to the baseline.
package archive
