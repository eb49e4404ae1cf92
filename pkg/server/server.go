// Package server exposes stored archives over a read-only HTTP API.
//
// The inspector serves archive listings, full HAR documents, and entry
// summaries, plus the usual liveness, readiness, and metrics endpoints.
// It never writes: recording happens through the recorder package, and
// the inspector only reads whatever Repository it was handed.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/repository"
	"mercator-hq/callisto/pkg/telemetry/health"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// Server is the archive inspector HTTP server.
type Server struct {
	config  *config.ServerConfig
	repo    repository.Repository
	checker *health.Checker
	metrics *metrics.Collector
	logger  *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates an inspector over the given repository. A nil cfg uses the
// defaults, a nil checker gets a fresh one with no registered checks, and
// a nil collector leaves the /metrics route unmounted.
func New(cfg *config.ServerConfig, repo repository.Repository, checker *health.Checker, collector *metrics.Collector) *Server {
	if cfg == nil {
		def := config.DefaultConfig().Server
		cfg = &def
	}
	if checker == nil {
		checker = health.New(0)
	}
	return &Server{
		config:  cfg,
		repo:    repo,
		checker: checker,
		metrics: collector,
		logger:  slog.Default().With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until the context is cancelled,
// a shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultServerShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("inspector stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Tests mount it directly
// without opening a listener.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Checker returns the health checker so callers can register readiness
// checks for the components they wire in.
func (s *Server) Checker() *health.Checker {
	return s.checker
}
