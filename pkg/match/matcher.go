package match

import (
	"net/http"
	"sync"

	"mercator-hq/callisto/pkg/interaction"
)

// Matcher decides whether a live request corresponds to a previously
// recorded message. It is stateless and safe for concurrent use; the
// per-session consumption state lives in the Pool.
type Matcher struct {
	rules []Rule
}

// NewMatcher creates a matcher from the given rules. With no rules it
// uses DefaultRules (method + URL).
func NewMatcher(rules ...Rule) *Matcher {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Matcher{rules: rules}
}

// Match finds the first unconsumed recorded message that satisfies every
// rule, consumes it, and returns a copy. Consumption is match-once: a
// recorded message satisfies at most one live request per pool, so N
// identical recorded calls replay exactly N identical live calls.
//
// It fails with NoMatchingInteractionError when no candidate remains.
func (m *Matcher) Match(live *http.Request, pool *Pool) (interaction.Message, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	for i := range pool.messages {
		if pool.used[i] {
			continue
		}
		if m.matches(live, pool.messages[i]) {
			pool.used[i] = true
			return pool.messages[i].Clone(), nil
		}
	}

	return interaction.Message{}, NewNoMatchingInteractionError(live.Method, live.URL.String(), pool.name)
}

func (m *Matcher) matches(live *http.Request, recorded interaction.Message) bool {
	for _, rule := range m.rules {
		if !rule.Matches(live, recorded) {
			return false
		}
	}
	return true
}

// Pool is the candidate set for one replay session: the recorded
// messages of an interaction plus per-message consumption marks. A Pool
// is safe for concurrent Match calls.
type Pool struct {
	mu       sync.Mutex
	name     string
	messages []interaction.Message
	used     []bool
}

// NewPool creates a pool over the interaction's messages. The messages
// are cloned so later mutation of the interaction cannot affect replay.
func NewPool(in *interaction.Interaction) *Pool {
	cloned := in.Clone()
	return &Pool{
		name:     cloned.Name,
		messages: cloned.Messages,
		used:     make([]bool, len(cloned.Messages)),
	}
}

// Remaining reports how many recorded messages are still unconsumed.
func (p *Pool) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, u := range p.used {
		if !u {
			n++
		}
	}
	return n
}

// Name returns the interaction name the pool was built from.
func (p *Pool) Name() string {
	return p.name
}
