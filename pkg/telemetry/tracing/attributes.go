package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Custom span attribute keys use the "callisto.*" namespace. Standard
// keys (http.*, error.*) follow OpenTelemetry semantic conventions.
const (
	// AttrInteraction is the interaction name a span operates on.
	AttrInteraction = "callisto.interaction"

	// AttrMode is the resolved recorder mode for the session.
	AttrMode = "callisto.mode"

	// AttrPersisted reports whether a store reached durable storage.
	AttrPersisted = "callisto.persisted"

	// AttrEntries is the number of entries written by a store.
	AttrEntries = "callisto.entries"

	// AttrRemaining is the number of unconsumed recorded messages left
	// in a replay pool after a match.
	AttrRemaining = "callisto.match.remaining"
)

// SetInteractionAttributes tags a span with the interaction it serves.
func SetInteractionAttributes(span trace.Span, name, mode string) {
	span.SetAttributes(
		attribute.String(AttrInteraction, name),
		attribute.String(AttrMode, mode),
	)
}

// SetStoreAttributes tags a store span with its outcome.
func SetStoreAttributes(span trace.Span, persisted bool, entries int) {
	span.SetAttributes(
		attribute.Bool(AttrPersisted, persisted),
		attribute.Int(AttrEntries, entries),
	)
}

// SetMatchAttributes tags a replay span with the pool state after the
// match.
func SetMatchAttributes(span trace.Span, remaining int) {
	span.SetAttributes(
		attribute.Int(AttrRemaining, remaining),
	)
}

// RecordError records err on the span and marks the span status as
// error. A nil err leaves the span untouched.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
