package recorder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"mercator-hq/callisto/pkg/match"
	"mercator-hq/callisto/pkg/repository"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// Config describes one recording context.
type Config struct {
	// Name identifies the interaction this session records or replays.
	// It doubles as the archive key. Required.
	Name string

	// Mode selects the execution mode.
	// Default: Auto.
	Mode Mode

	// Repository persists and loads interactions. Required.
	Repository repository.Repository

	// Matcher decides which recorded message serves a live request in
	// Replay mode.
	// Default: method + URL matching.
	Matcher *match.Matcher

	// Metrics receives recording instrumentation. Optional.
	Metrics *metrics.Collector

	// Tracer emits record/replay/store spans.
	// Default: noop tracer.
	Tracer trace.Tracer

	// Logger receives session logs.
	// Default: slog.Default() with component=recorder.
	Logger *slog.Logger
}

// withDefaults validates required fields and fills the optional ones.
func (c Config) withDefaults() (Config, error) {
	if c.Name == "" {
		return c, errors.New("session name is required")
	}
	if c.Repository == nil {
		return c, errors.New("repository is required")
	}
	if c.Matcher == nil {
		c.Matcher = match.NewMatcher()
	}
	if c.Tracer == nil {
		c.Tracer = tracing.Noop().Tracer()
	}
	if c.Logger == nil {
		c.Logger = slog.Default().With("component", "recorder")
	}
	return c, nil
}

// Session is one active recording context. It resolves its execution
// mode lazily, hands out Transports bound to itself, and frees its
// Manager slot on Release.
//
// A Session is safe for concurrent calls through its Transports; the
// mode and the replay pool resolve exactly once.
type Session struct {
	name    string
	configd Mode
	repo    repository.Repository
	matcher *match.Matcher
	metrics *metrics.Collector
	tracer  trace.Tracer
	logger  *slog.Logger

	mu       sync.Mutex
	resolved Mode
	modeSet  bool
	pool     *match.Pool

	releaseOnce sync.Once
	release     func()
}

// newSession builds a session from a validated config.
func newSession(cfg Config, release func()) *Session {
	return &Session{
		name:    cfg.Name,
		configd: cfg.Mode,
		repo:    cfg.Repository,
		matcher: cfg.Matcher,
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
		logger:  cfg.Logger,
		release: release,
	}
}

// Name returns the interaction name the session operates on.
func (s *Session) Name() string {
	return s.name
}

// Mode returns the session's resolved execution mode.
//
// Resolution happens at most once: the CALLISTO_MODE override is
// consulted first, then the configured mode, and Auto turns into Record
// or Replay depending on whether the repository holds an archive under
// the session name. The result is cached; concurrent first calls
// converge on one mode. A failing existence check is returned without
// caching so a later call can succeed.
func (s *Session) Mode(ctx context.Context) (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modeSet {
		return s.resolved, nil
	}

	mode := s.configd
	if override, ok := envMode(); ok {
		mode = override
	}

	if mode == Auto {
		exists, err := s.repo.Exists(ctx, s.name)
		if err != nil {
			return Auto, err
		}
		if exists {
			mode = Replay
		} else {
			mode = Record
		}
	}

	s.resolved = mode
	s.modeSet = true
	s.logger.Debug("session mode resolved",
		"interaction", s.name,
		"mode", mode.String(),
	)
	return mode, nil
}

// replayPool returns the session's candidate pool, loading the archive
// on first use. Explicit Replay against a missing archive surfaces
// repository.NoSuchInteractionError.
func (s *Session) replayPool(ctx context.Context) (*match.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		return s.pool, nil
	}

	in, err := s.repo.Load(ctx, s.name)
	if err != nil {
		return nil, err
	}

	s.pool = match.NewPool(in)
	s.logger.Debug("replay pool loaded",
		"interaction", s.name,
		"messages", s.pool.Remaining(),
	)
	return s.pool, nil
}

// Transport returns an http.RoundTripper that runs every call through
// this session. A nil base uses http.DefaultTransport for real calls.
func (s *Session) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{session: s, base: base}
}

// Client returns an http.Client whose transport runs through this
// session.
func (s *Session) Client() *http.Client {
	return &http.Client{Transport: s.Transport(nil)}
}

// Release frees the Manager slot. It is unconditional and idempotent:
// it runs once whether or not any call succeeded, so a failed test
// never wedges the slot for the next one.
func (s *Session) Release() {
	s.releaseOnce.Do(func() {
		if s.release != nil {
			s.release()
		}
		if s.metrics != nil {
			s.metrics.SessionEnded()
		}
		s.logger.Debug("recording context released", "interaction", s.name)
	})
}
