package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/observe"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
)

// ErrRunNotFound is returned by StopRun for an unknown or finished run.
var ErrRunNotFound = errors.New("run not found")

// Engine drives conversations between a user and a set of agents over one
// completion transport.
//
// The Engine holds no per-run mutable state: every Run and RunStream call
// works on its own copy of the history and context variables, so concurrent
// runs share nothing but the transport.
//
// Example Usage:
//
//	eng := New(openai.NewModel())
//
//	resp, err := eng.Run(ctx, triage, []core.Message{core.UserMessage("Hi")},
//	    WithContextVariables(core.ContextVariables{"user_name": "Ada"}))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Messages[len(resp.Messages)-1].Content)
type Engine struct {
	model model.Model

	// Immutable after construction
	logger     logging.Logger
	config     Config
	callbacks  *CallbackManager
	tracer     trace.Tracer
	metrics    *observe.Metrics
	debugOut   io.Writer
	debugColor bool

	// Concurrency slots, nil when unlimited
	sem chan struct{}

	// Active run tracking - protected by runsMu
	activeRuns map[string]context.CancelFunc
	runsMu     sync.Mutex
}

// New creates an Engine over m with sensible defaults and optional
// configuration.
//
// Examples:
//
//	// Minimal setup with all defaults
//	eng := New(m)
//
//	// Bounded concurrency, structured logging and hooks
//	eng := New(m, func(o *Options) {
//	    o.Config.MaxConcurrentRuns = 16
//	    o.Logger = logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	    o.Callbacks = callbacks
//	})
func New(m model.Model, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:      DefaultConfig,
		Logger:      logging.NoOpLogger{},
		DebugWriter: os.Stdout,
		DebugColor:  true,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.DebugWriter == nil {
		opts.DebugWriter = os.Stdout
	}

	metrics, err := observe.NewMetrics(opts.MeterProvider)
	if err != nil {
		opts.Logger.Warn("engine.metrics.disabled", "error", err.Error())
		metrics, _ = observe.NewMetrics(noop.NewMeterProvider())
	}

	e := &Engine{
		model:      m,
		logger:     opts.Logger,
		config:     opts.Config,
		callbacks:  opts.Callbacks,
		tracer:     observe.Tracer(opts.TracerProvider),
		metrics:    metrics,
		debugOut:   opts.DebugWriter,
		debugColor: opts.DebugColor,
		activeRuns: make(map[string]context.CancelFunc),
	}

	if opts.Config.MaxConcurrentRuns > 0 {
		e.sem = make(chan struct{}, opts.Config.MaxConcurrentRuns)
	}

	return e
}

// Model returns the completion transport of the engine.
func (e *Engine) Model() model.Model { return e.model }

// Run executes a conversation synchronously starting with agent and
// returns the messages added beyond the caller's history, the final active
// agent and the final context variables.
//
// The loop requests a completion, appends it, dispatches the single function
// call it may carry and merges the result, until the model answers without a
// function call, function execution is disabled or MaxTurns is reached.
//
// Errors:
//   - core.ErrNoAgent when agent is nil
//   - *core.TransportError, *core.SchemaError, *core.ArgumentError,
//     *core.FunctionError and *core.ResultCoercionError end the run
//   - calls to unknown functions do not: they are answered with an error
//     message and the run continues
func (e *Engine) Run(ctx context.Context, agent *core.Agent, messages []core.Message, optFns ...func(o *RunOptions)) (resp *core.Response, err error) {
	r, err := e.begin(ctx, agent, messages, optFns)
	if err != nil {
		return nil, err
	}
	defer func() { r.finish(err) }()

	for r.shouldContinue() {
		req, err := r.prepareTurn(false)
		if err != nil {
			return nil, err
		}

		msg, err := r.complete(req)
		if err != nil {
			return nil, err
		}

		if err := r.accept(req, msg); err != nil {
			return nil, err
		}

		if !msg.HasFunctionCall() || !r.opts.ExecuteFunctions {
			r.debug.Print("Ending turn.")
			break
		}

		if err := r.dispatch(*msg.FunctionCall); err != nil {
			return nil, err
		}
	}

	return r.state.Response(), nil
}

// RunStream starts a streaming conversation. Nothing is requested until the
// first call to Stream.Next; the caller must Close the stream.
func (e *Engine) RunStream(ctx context.Context, agent *core.Agent, messages []core.Message, optFns ...func(o *RunOptions)) (*Stream, error) {
	r, err := e.begin(ctx, agent, messages, optFns)
	if err != nil {
		return nil, err
	}
	return &Stream{run: r}, nil
}

// StopRun cancels the run with the given id.
func (e *Engine) StopRun(runID string) error {
	e.runsMu.Lock()
	cancel, ok := e.activeRuns[runID]
	e.runsMu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	cancel()
	return nil
}

// ActiveRuns returns the number of runs in progress.
func (e *Engine) ActiveRuns() int {
	e.runsMu.Lock()
	defer e.runsMu.Unlock()
	return len(e.activeRuns)
}

func (e *Engine) acquire(ctx context.Context) error {
	if e.sem == nil {
		return nil
	}
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) release() {
	if e.sem != nil {
		<-e.sem
	}
}

func (e *Engine) track(id string, cancel context.CancelFunc) error {
	e.runsMu.Lock()
	defer e.runsMu.Unlock()
	if _, exists := e.activeRuns[id]; exists {
		return fmt.Errorf("run %s is already active", id)
	}
	e.activeRuns[id] = cancel
	return nil
}

func (e *Engine) untrack(id string) {
	e.runsMu.Lock()
	delete(e.activeRuns, id)
	e.runsMu.Unlock()
}
