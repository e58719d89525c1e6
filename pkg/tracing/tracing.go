// Package tracing provides otel span helpers for the processing engines
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// Init obtains a named tracer from the global provider. The host binary is
// responsible for installing a real provider before calling Init; without one
// the global provider hands back no-op tracers.
func Init(name string) {
	tracer = otel.Tracer(name)
}

// SetTracer overrides the tracer, used by hosts that manage their own provider.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// StartSpan starts a span under the configured tracer. When no tracer is
// configured the incoming context passes through untouched and the returned
// span is whatever the context already carries, so engine code can always
// call span.End.
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName)
}

// GetActiveSpan returns the span recorded on the context, or nil when the
// context carries no valid span.
func GetActiveSpan(ctx context.Context) trace.Span {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}
