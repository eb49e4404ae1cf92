// Package match decides which recorded message answers a live request
// during replay.
//
// # Rules
//
// Matching is rule-composable under logical AND. The canonical rule set
// compares the HTTP method (case-insensitive) and the URL (scheme and
// host case-insensitive, path exact, query as an order-insensitive
// parameter multiset). Headers are ignored by default; HeaderRule opts a
// named header into the comparison, and BodyRule adds byte-exact body
// comparison.
//
// # Match-once
//
// Candidates live in a Pool created per replay session. Each recorded
// message is consumed by at most one successful match, so a test that
// recorded N identical calls replays exactly N identical calls and the
// N+1th fails with NoMatchingInteractionError.
package match
