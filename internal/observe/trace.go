package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for the swarm tracer.
const tracerName = "github.com/hupe1980/agentswarm"

// Span names used by the turn engine.
const (
	SpanRun      = "swarm.run"
	SpanTurn     = "swarm.turn"
	SpanFunction = "swarm.function"
)

// Tracer returns the swarm [trace.Tracer] from tp. A nil tp falls back to the
// globally registered [trace.TracerProvider].
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}

// CorrelationID extracts the trace ID from the OTel span context in ctx.
// Returns the empty string when no active span with a valid trace ID exists.
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
