// Package tracing wires OpenTelemetry tracing for the recording engine.
// Spans are emitted around record, replay, and store operations so a
// trace shows where an HTTP exchange went: to the origin, into an
// archive, or out of one.
package tracing

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/callisto/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

// tracerName is the instrumentation scope for all engine spans.
const tracerName = "callisto"

// Span names emitted by the recorder and repositories.
const (
	SpanRecord = "recorder.record"
	SpanReplay = "recorder.replay"
	SpanStore  = "repository.store"
)

// Tracer wraps the OpenTelemetry SDK behind a small surface. When
// tracing is disabled the wrapped tracer is a noop and Start costs
// almost nothing, so call sites never branch on configuration.
type Tracer struct {
	config   *config.TracingConfig
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

// New creates a Tracer from cfg. With tracing disabled it returns a
// noop tracer; enabled, it builds an OTLP gRPC exporter, installs a
// batching provider as the global OpenTelemetry provider, and sets the
// W3C trace-context propagator.
//
// Callers own shutdown:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg *config.TracingConfig) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}

	t := &Tracer{
		config:  cfg,
		enabled: cfg.Enabled,
	}

	if !cfg.Enabled {
		t.tracer = trace.NewNoopTracerProvider().Tracer(tracerName)
		return t, nil
	}

	exporter, err := createOTLPExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(createSampler(cfg.SampleRatio)),
	)

	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	t.tracer = t.provider.Tracer(tracerName)

	return t, nil
}

// Noop returns a disabled Tracer. Useful wherever a Tracer is required
// but telemetry has not been configured, such as tests.
func Noop() *Tracer {
	return &Tracer{
		tracer: trace.NewNoopTracerProvider().Tracer(tracerName),
	}
}

// Start creates a span named name, linked to any parent span in ctx.
// The returned span must be ended by the caller:
//
//	ctx, span := tracer.Start(ctx, tracing.SpanRecord)
//	defer span.End()
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Tracer returns the underlying OpenTelemetry tracer for components
// that accept the trace.Tracer interface directly.
func (t *Tracer) Tracer() trace.Tracer {
	return t.tracer
}

// Shutdown flushes pending spans and stops the provider. It is a no-op
// for disabled tracers.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.enabled || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Enabled reports whether spans are exported.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// createOTLPExporter builds the OTLP gRPC span exporter from cfg.
func createOTLPExporter(cfg *config.TracingConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}

	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTracingTimeout
	}
	opts = append(opts, otlptracegrpc.WithTimeout(timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := otlptracegrpc.NewClient(opts...)
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	return exporter, nil
}

// createSampler maps a sample ratio onto an SDK sampler. Ratios at or
// above 1 sample everything; children follow their parent's decision.
func createSampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}
