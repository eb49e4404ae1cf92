// Package telemetry groups the observability building blocks for the
// recording engine.
//
// # Components
//
//   - logging: slog handler construction with secret redaction
//   - metrics: Prometheus counters for recordings, replays, and match
//     failures, plus store latency and active-session instrumentation
//   - tracing: OpenTelemetry spans around record, replay, and store
//   - health: liveness and readiness checks for the inspector server
//
// # Usage
//
//	cfg := config.Get()
//
//	logger, err := logging.Setup(&cfg.Telemetry.Logging)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
//
// Secret redaction in logs is independent of archive scrubbing: the
// scrub package rewrites what gets persisted, while logging redaction
// covers what gets printed. Both default to on so captured credentials
// never leave the process in clear text.
package telemetry
