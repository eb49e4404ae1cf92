// Package metrics exposes Prometheus instrumentation for the recording
// engine: counters for captured recordings, served replays, and match
// failures, a histogram for archive store latency, and a gauge for
// active recording contexts.
package metrics

import (
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every metric the engine records. All recording methods
// are no-ops when metrics are disabled in configuration, so call sites
// never need their own guards.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	recordings    prometheus.Counter
	replays       prometheus.Counter
	matchFailures prometheus.Counter
	storeDuration prometheus.Histogram
	activeCtx     prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics with
// registry. A nil registry gets a fresh private registry, which keeps
// tests isolated from each other and from the global default.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.StoreDurationBuckets) == 0 {
		cfg.StoreDurationBuckets = config.DefaultStoreDurationBuckets()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		recordings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "recordings_total",
			Help:      "Total number of interactions captured in Record mode",
		}),

		replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "replays_total",
			Help:      "Total number of responses served from archives in Replay mode",
		}),

		matchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "match_failures_total",
			Help:      "Total number of replay requests with no matching recorded message",
		}),

		storeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "store_duration_seconds",
			Help:      "Duration of archive store operations in seconds",
			Buckets:   cfg.StoreDurationBuckets,
		}),

		activeCtx: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "active_sessions",
			Help:      "Number of currently held recording contexts",
		}),
	}

	registry.MustRegister(
		c.recordings,
		c.replays,
		c.matchFailures,
		c.storeDuration,
		c.activeCtx,
	)

	return c
}

// RecordingCaptured increments the captured-recordings counter.
func (c *Collector) RecordingCaptured() {
	if !c.config.Enabled {
		return
	}
	c.recordings.Inc()
}

// ReplayServed increments the served-replays counter.
func (c *Collector) ReplayServed() {
	if !c.config.Enabled {
		return
	}
	c.replays.Inc()
}

// MatchFailed increments the match-failure counter.
func (c *Collector) MatchFailed() {
	if !c.config.Enabled {
		return
	}
	c.matchFailures.Inc()
}

// ObserveStoreDuration records the latency of one store operation.
func (c *Collector) ObserveStoreDuration(d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.storeDuration.Observe(d.Seconds())
}

// SessionStarted increments the active-session gauge.
func (c *Collector) SessionStarted() {
	if !c.config.Enabled {
		return
	}
	c.activeCtx.Inc()
}

// SessionEnded decrements the active-session gauge.
func (c *Collector) SessionEnded() {
	if !c.config.Enabled {
		return
	}
	c.activeCtx.Dec()
}

// Registry returns the Prometheus registry holding the collector's
// metrics, for callers that register additional instrumentation.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
