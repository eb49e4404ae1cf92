package recorder

import (
	"fmt"
	"os"
)

// Mode is the execution mode of a session. The zero value is Auto, so
// an unconfigured session records on the first run and replays on later
// runs.
type Mode int

const (
	// Auto resolves into Record or Replay on first use, depending on
	// whether an archive exists under the session name.
	Auto Mode = iota

	// Passthrough forwards calls unmodified, without touching archives.
	Passthrough

	// Record forwards calls to the origin and persists each exchange.
	Record

	// Replay serves responses from the stored archive and never calls
	// the origin.
	Replay
)

// ModeEnvVar is the environment key holding the process-level mode
// override. It is checked before the configured mode on session
// resolution; values that are not exact mode tokens are ignored.
const ModeEnvVar = "CALLISTO_MODE"

// modeNames maps modes to their exact case-sensitive tokens.
var modeNames = map[Mode]string{
	Auto:        "Auto",
	Passthrough: "Passthrough",
	Record:      "Record",
	Replay:      "Replay",
}

// String returns the mode token.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses an exact case-sensitive mode token.
func ParseMode(s string) (Mode, error) {
	for mode, name := range modeNames {
		if s == name {
			return mode, nil
		}
	}
	return Auto, fmt.Errorf("unknown mode: %q", s)
}

// envMode returns the CALLISTO_MODE override, if set to a valid token.
func envMode() (Mode, bool) {
	token, ok := os.LookupEnv(ModeEnvVar)
	if !ok {
		return Auto, false
	}
	mode, err := ParseMode(token)
	if err != nil {
		return Auto, false
	}
	return mode, true
}
