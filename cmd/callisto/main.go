// Callisto is an HTTP interaction record/replay engine.
//
// It intercepts outgoing HTTP calls made by a client application and,
// depending on an execution mode, passes the call through untouched,
// records the request/response exchange to durable storage, or replays
// a previously recorded exchange instead of contacting the network.
// Recorded archives are HAR-compatible JSON, so any HAR viewer can
// inspect them.
//
// Usage:
//
//	# Record one request into an archive
//	callisto record --name checkout-flow https://api.example.com/cart
//
//	# Summarize a recorded archive
//	callisto inspect checkout-flow
//
//	# Schema-check every archive under the configured root
//	callisto validate
//
//	# Re-apply the current scrub rules to stored archives
//	callisto scrub
//
//	# Pull shared archives from the team's Git repository
//	callisto sync
//
//	# Serve the read-only archive inspector API
//	callisto serve
//
// The CALLISTO_MODE environment variable, when set to one of
// Passthrough, Record, Replay or Auto, forces that execution mode for
// every session in the process.
package main

import "github.com/joho/godotenv"

func main() {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	Execute()
}
