package recorder

import (
	"sync"

	"github.com/google/uuid"
)

// Manager is the session registry: it enforces the single-active-context
// rule with a mutex-guarded check-and-set and issues a fresh token per
// acquisition so a stale release can never free a successor's slot.
//
// Most callers use the package-level Start, which runs on a shared
// default Manager. Tests that need isolated slots construct their own.
type Manager struct {
	mu     sync.Mutex
	active *Session
	token  string
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Acquire validates cfg, claims the active slot, and returns the new
// session. It fails with MultipleActiveContextsError when a session is
// already active.
func (m *Manager) Acquire(cfg Config) (*Session, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, NewMultipleActiveContextsError(m.active.name, cfg.Name)
	}

	token := uuid.New().String()
	session := newSession(cfg, func() {
		m.release(token)
	})

	m.active = session
	m.token = token

	if session.metrics != nil {
		session.metrics.SessionStarted()
	}
	session.logger.Debug("recording context acquired",
		"interaction", session.name,
		"mode", cfg.Mode.String(),
	)

	return session, nil
}

// release frees the active slot if token still owns it.
func (m *Manager) release(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != token {
		return
	}
	m.active = nil
	m.token = ""
}

// Active returns the interaction name of the active session, or "" when
// the slot is free.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return ""
	}
	return m.active.name
}

// defaultManager serves package-level Start calls.
var defaultManager = NewManager()

// Start acquires a session on the package-level default Manager.
func Start(cfg Config) (*Session, error) {
	return defaultManager.Acquire(cfg)
}
