package engine

import (
	"io"
	"math"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// Config defines tuning parameters for the Engine's operational behavior.
//
// Example:
//
//	cfg := Config{
//	    MaxConcurrentRuns: 50,
//	}
type Config struct {
	// MaxConcurrentRuns limits the number of runs that can execute
	// simultaneously on one engine. A run waits for a free slot until its
	// context is done. Runs never share conversation state; the limit only
	// protects transport capacity. Set to 0 for unlimited.
	MaxConcurrentRuns int
}

// DefaultConfig places no limit on concurrent runs.
var DefaultConfig = Config{
	MaxConcurrentRuns: 0,
}

// Options configures an Engine instance using the functional options pattern.
//
// Example:
//
//	eng := New(m, func(o *Options) {
//	    o.Config.MaxConcurrentRuns = 8
//	    o.Logger = logger
//	})
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil.
	Logger logging.Logger

	// TracerProvider and MeterProvider receive run telemetry. Nil falls back
	// to the global OpenTelemetry providers.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	// DebugWriter receives the human-readable trace of runs started with
	// RunOptions.Debug. Defaults to os.Stdout.
	DebugWriter io.Writer

	// DebugColor enables ANSI colours on the debug trace. Defaults to true.
	DebugColor bool

	// Callbacks are executed at the lifecycle points of every run.
	Callbacks *CallbackManager
}

// RunOptions configures a single Run or RunStream call.
type RunOptions struct {
	// RunID identifies the run in logs, traces and StopRun. Generated when empty.
	RunID string

	// ContextVariables seed the run. The caller's map is copied and never
	// mutated.
	ContextVariables core.ContextVariables

	// ModelOverride replaces every agent's model for this run when non-empty.
	ModelOverride string

	// Debug enables the human-readable trace on Options.DebugWriter.
	Debug bool

	// MaxTurns bounds the number of messages the run may add. Defaults to
	// unlimited; zero yields an empty response without contacting the model.
	MaxTurns int

	// ExecuteFunctions controls whether function calls requested by the
	// model are dispatched. When false the run ends after the first
	// assistant message. Defaults to true.
	ExecuteFunctions bool
}

// DefaultRunOptions returns the options applied before any caller option.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		MaxTurns:         math.MaxInt,
		ExecuteFunctions: true,
	}
}

// WithContextVariables seeds the run with vars.
func WithContextVariables(vars core.ContextVariables) func(o *RunOptions) {
	return func(o *RunOptions) { o.ContextVariables = vars }
}

// WithModelOverride replaces every agent's model for the run.
func WithModelOverride(model string) func(o *RunOptions) {
	return func(o *RunOptions) { o.ModelOverride = model }
}

// WithDebug enables the debug trace.
func WithDebug(debug bool) func(o *RunOptions) {
	return func(o *RunOptions) { o.Debug = debug }
}

// WithMaxTurns bounds the number of messages the run may add.
func WithMaxTurns(n int) func(o *RunOptions) {
	return func(o *RunOptions) { o.MaxTurns = n }
}

// WithExecuteFunctions toggles function dispatch.
func WithExecuteFunctions(execute bool) func(o *RunOptions) {
	return func(o *RunOptions) { o.ExecuteFunctions = execute }
}

// WithRunID sets the run identifier.
func WithRunID(id string) func(o *RunOptions) {
	return func(o *RunOptions) { o.RunID = id }
}
