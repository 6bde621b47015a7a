package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/flow"
	"github.com/hupe1980/agentswarm/internal/observe"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
)

// run is the state of one Run or RunStream call. It is owned by a single
// goroutine of control.
type run struct {
	id         string
	engine     *Engine
	opts       RunOptions
	state      *core.ConversationState
	dispatcher *flow.Dispatcher
	debug      *logging.DebugPrinter
	logger     logging.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	span     trace.Span
	started  time.Time
	done     func(err error)
	finished bool
}

func (e *Engine) begin(ctx context.Context, agent *core.Agent, messages []core.Message, optFns []func(o *RunOptions)) (*run, error) {
	if agent == nil {
		return nil, core.ErrNoAgent
	}

	opts := DefaultRunOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	if err := e.acquire(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := e.track(opts.RunID, cancel); err != nil {
		cancel()
		e.release()
		return nil, err
	}

	runCtx, span := e.tracer.Start(runCtx, observe.SpanRun,
		trace.WithAttributes(
			attribute.String("swarm.run_id", opts.RunID),
			attribute.String("swarm.agent", agent.Name),
		),
	)

	r := &run{
		id:      opts.RunID,
		engine:  e,
		opts:    opts,
		state:   core.NewConversationState(agent, messages, opts.ContextVariables),
		ctx:     runCtx,
		cancel:  cancel,
		span:    span,
		started: time.Now(),
		done:    e.metrics.RunStarted(runCtx),
		logger:  e.logger,
	}

	if sl, ok := e.logger.(*logging.SwarmLogger); ok {
		r.logger = sl.WithComponent("engine").WithRun(r.id, agent.Name)
	}

	if opts.Debug {
		r.debug = logging.NewDebugPrinter(e.debugOut, func(o *logging.DebugPrinterOptions) { o.Color = e.debugColor })
	}

	r.dispatcher = flow.NewDispatcher(func(o *flow.DispatcherOptions) {
		o.Logger = r.logger
		o.Debug = r.debug
	})

	r.logger.Info("engine.run.start", "run_id", r.id, "agent", agent.Name, "history", len(messages), "max_turns", opts.MaxTurns)

	return r, nil
}

// finish releases the run's resources. It is idempotent.
func (r *run) finish(err error) {
	if r.finished {
		return
	}
	r.finished = true

	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
		_ = r.engine.callbacks.ExecuteCallbacks(r.ctx, CallbackOnError, &CallbackContext{
			RunID: r.id,
			Agent: r.state.ActiveAgent(),
			Err:   err,
		})
	}

	if sl, ok := r.logger.(*logging.SwarmLogger); ok {
		sl.LogRun(r.state.Turns(), time.Since(r.started), err == nil, err)
	} else {
		r.logger.Info("engine.run.complete", "run_id", r.id, "turns", r.state.Turns(), "error", err != nil)
	}

	r.done(err)
	r.span.End()
	r.cancel()
	r.engine.untrack(r.id)
	r.engine.release()
}

func (r *run) shouldContinue() bool {
	return r.state.Turns() < r.opts.MaxTurns && r.state.ActiveAgent() != nil
}

// prepareTurn builds the completion request for the active agent.
func (r *run) prepareTurn(stream bool) (model.Request, error) {
	agent := r.state.ActiveAgent()

	req, err := flow.BuildRequest(agent, r.state.History(), r.state.ContextVariables(), r.opts.ModelOverride, stream)
	if err != nil {
		return model.Request{}, err
	}

	r.debug.Print("Getting chat completion for...:", req.Messages)
	r.logger.Debug("engine.turn.request", "run_id", r.id, "agent", agent.Name, "model", req.Model, "messages", len(req.Messages), "functions", len(req.Functions))

	if err := r.engine.callbacks.ExecuteCallbacks(r.ctx, CallbackBeforeModel, &CallbackContext{
		RunID:   r.id,
		Agent:   agent,
		Request: &req,
	}); err != nil {
		return model.Request{}, err
	}

	return req, nil
}

// complete performs a non-streaming completion.
func (r *run) complete(req model.Request) (core.Message, error) {
	ctx, span := r.startTurnSpan(req)
	defer span.End()

	start := time.Now()
	msg, err := r.engine.model.Complete(ctx, req)
	if err == nil && msg == nil {
		err = errors.New("empty completion")
	}
	r.recordCompletion(ctx, req.Model, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return core.Message{}, &core.TransportError{Model: req.Model, Err: err}
	}

	out := msg.Clone()
	out.Role = core.RoleAssistant
	return out, nil
}

// recordCompletion reports the latency and outcome of one model call.
func (r *run) recordCompletion(ctx context.Context, name string, dur time.Duration, err error) {
	r.engine.metrics.RecordCompletion(ctx, name, dur, err)

	if sl, ok := r.logger.(*logging.SwarmLogger); ok {
		sl.LogModelCall(name, dur, err == nil, err)
		return
	}
	r.logger.Debug("engine.model.call", "run_id", r.id, "model", name, "duration_ms", dur.Milliseconds(), "error", err != nil)
}

func (r *run) startTurnSpan(req model.Request) (context.Context, trace.Span) {
	return r.engine.tracer.Start(r.ctx, observe.SpanTurn,
		trace.WithAttributes(
			attribute.String("swarm.agent", r.state.ActiveAgent().Name),
			attribute.String("swarm.model", req.Model),
			attribute.Int("swarm.turn", r.state.Turns()),
			attribute.Bool("swarm.stream", req.Stream),
		),
	)
}

// accept tags msg with the active agent and appends it to the history.
func (r *run) accept(req model.Request, msg core.Message) error {
	agent := r.state.ActiveAgent()
	msg.Sender = agent.Name

	r.debug.Print("Received completion:", msg.Content, functionCallText(msg))

	if err := r.engine.callbacks.ExecuteCallbacks(r.ctx, CallbackAfterModel, &CallbackContext{
		RunID:   r.id,
		Agent:   agent,
		Request: &req,
		Message: &msg,
	}); err != nil {
		return err
	}

	r.state.AppendAssistant(msg)
	return nil
}

// dispatch executes call and merges its outcome.
func (r *run) dispatch(call core.FunctionCall) error {
	agent := r.state.ActiveAgent()

	ctx, span := r.engine.tracer.Start(r.ctx, observe.SpanFunction,
		trace.WithAttributes(
			attribute.String("swarm.agent", agent.Name),
			attribute.String("swarm.function", call.Name),
			attribute.String("swarm.function_call_id", call.ID),
		),
	)
	defer span.End()

	cbCtx := &CallbackContext{RunID: r.id, Agent: agent, FunctionCall: &call}
	if err := r.engine.callbacks.ExecuteCallbacks(ctx, CallbackBeforeFunction, cbCtx); err != nil {
		return err
	}

	out, err := r.dispatcher.Execute(ctx, agent, call, r.state.ContextVariables())
	if err != nil {
		r.engine.metrics.RecordFunctionCall(ctx, call.Name, observe.StatusError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	status := observe.StatusOK
	if out.NotFound {
		status = observe.StatusNotFound
		span.SetAttributes(attribute.Bool("swarm.function_not_found", true))
	}
	r.engine.metrics.RecordFunctionCall(ctx, call.Name, status)

	cbCtx.Outcome = &out
	if err := r.engine.callbacks.ExecuteCallbacks(ctx, CallbackAfterFunction, cbCtx); err != nil {
		return err
	}

	if len(out.Result.ContextVariables) > 0 {
		if err := r.engine.callbacks.ExecuteCallbacks(ctx, CallbackOnContextUpdate, &CallbackContext{
			RunID:        r.id,
			Agent:        agent,
			FunctionCall: &call,
			Delta:        out.Result.ContextVariables.Clone(),
		}); err != nil {
			return err
		}
	}

	r.state.MergeFunctionResult(out.Name, out.CallID, out.Result)

	if next := out.Result.Agent; next != nil {
		r.logger.Info("engine.handoff", "run_id", r.id, "from", agent.Name, "to", next.Name, "function", call.Name)
		r.engine.metrics.RecordHandoff(ctx, agent.Name, next.Name)
		span.SetAttributes(attribute.String("swarm.handoff", next.Name))

		if err := r.engine.callbacks.ExecuteCallbacks(ctx, CallbackOnHandoff, &CallbackContext{
			RunID:         r.id,
			Agent:         next,
			PreviousAgent: agent,
			FunctionCall:  &call,
		}); err != nil {
			return err
		}
	}

	return nil
}

func functionCallText(msg core.Message) string {
	if msg.FunctionCall == nil {
		return ""
	}
	return msg.FunctionCall.Name + "(" + msg.FunctionCall.Arguments + ")"
}
