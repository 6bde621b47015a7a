// Package observe provides the swarm's observability primitives:
// OpenTelemetry metrics and distributed tracing for runs, turns and function
// calls.
//
// Providers are injected by the caller; nil falls back to the global OTel
// providers. Tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all swarm metrics.
const meterName = "github.com/hupe1980/agentswarm"

// Status attribute values.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// Metrics holds all OpenTelemetry metric instruments of the swarm.
// All fields are safe for concurrent use.
type Metrics struct {
	// CompletionDuration tracks completion request latency. Use with attributes:
	//   attribute.String("model", ...), attribute.String("status", ...)
	CompletionDuration metric.Float64Histogram

	// Runs counts finished runs. Use with attribute:
	//   attribute.String("status", ...)
	Runs metric.Int64Counter

	// Turns counts completion requests issued by runs.
	Turns metric.Int64Counter

	// FunctionCalls counts dispatched function calls. Use with attributes:
	//   attribute.String("function", ...), attribute.String("status", ...)
	FunctionCalls metric.Int64Counter

	// Handoffs counts active-agent switches. Use with attributes:
	//   attribute.String("from", ...), attribute.String("to", ...)
	Handoffs metric.Int64Counter

	// ActiveRuns tracks the number of runs in progress.
	ActiveRuns metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// completion round-trips.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. A nil provider falls back to [otel.GetMeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CompletionDuration, err = m.Float64Histogram("swarm.completion.duration",
		metric.WithDescription("Latency of completion requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.Runs, err = m.Int64Counter("swarm.runs",
		metric.WithDescription("Total finished runs by status."),
	); err != nil {
		return nil, err
	}
	if met.Turns, err = m.Int64Counter("swarm.turns",
		metric.WithDescription("Total completion requests issued by runs."),
	); err != nil {
		return nil, err
	}
	if met.FunctionCalls, err = m.Int64Counter("swarm.function.calls",
		metric.WithDescription("Total function calls by function name and status."),
	); err != nil {
		return nil, err
	}
	if met.Handoffs, err = m.Int64Counter("swarm.handoffs",
		metric.WithDescription("Total active-agent switches."),
	); err != nil {
		return nil, err
	}

	if met.ActiveRuns, err = m.Int64UpDownCounter("swarm.active_runs",
		metric.WithDescription("Number of runs in progress."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// StatusOf maps an error onto a status attribute value.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// RecordCompletion records one completion round-trip.
func (m *Metrics) RecordCompletion(ctx context.Context, model string, d time.Duration, err error) {
	m.Turns.Add(ctx, 1, metric.WithAttributes(attribute.String("model", model)))
	m.CompletionDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("status", StatusOf(err)),
		),
	)
}

// RecordFunctionCall records a function call counter increment with the
// standard attribute set.
func (m *Metrics) RecordFunctionCall(ctx context.Context, function, status string) {
	m.FunctionCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("function", function),
			attribute.String("status", status),
		),
	)
}

// RecordHandoff records an active-agent switch.
func (m *Metrics) RecordHandoff(ctx context.Context, from, to string) {
	m.Handoffs.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}

// RunStarted increments the active run gauge. The returned function records
// the finished run and decrements the gauge; call it exactly once.
func (m *Metrics) RunStarted(ctx context.Context) func(err error) {
	m.ActiveRuns.Add(ctx, 1)
	return func(err error) {
		m.ActiveRuns.Add(ctx, -1)
		m.Runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", StatusOf(err))))
	}
}
