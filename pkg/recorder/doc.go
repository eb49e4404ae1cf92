// Package recorder drives HTTP interception: it decides per session
// whether calls pass through, get recorded, or are replayed, and wires
// that decision into any http.Client via a RoundTripper.
//
// # Sessions
//
// A Session is the recording context for one named interaction. At most
// one session is active per Manager; acquiring a second fails with
// MultipleActiveContextsError while leaving the active session intact.
//
//	session, err := recorder.Start(recorder.Config{
//		Name:       "checkout",
//		Repository: repo,
//	})
//	if err != nil {
//		return err
//	}
//	defer session.Release()
//
//	client := session.Client()
//	resp, err := client.Get("https://api.example.com/orders")
//
// # Modes
//
// The execution mode resolves once per session. Auto, the default,
// turns into Record when no archive exists under the session name and
// into Replay when one does, so the same test records on first run and
// replays afterwards. The CALLISTO_MODE environment variable overrides
// the configured mode when set to an exact mode token; invalid values
// are ignored.
//
// # Replay matching
//
// Replay serves each live request the first unconsumed recorded message
// accepted by the session's match rules (method plus full URL unless
// configured otherwise). Matching is match-once: two recorded calls
// satisfy exactly two live calls, and a third fails with
// NoMatchingInteractionError.
package recorder
