package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// Outcome describes one dispatched function call.
type Outcome struct {
	Name     string
	CallID   string
	Result   core.Result
	NotFound bool
	Duration time.Duration
	// Err wraps core.ErrFunctionNotFound when NotFound is set. Fatal failures
	// are returned from Execute instead.
	Err error
}

// DispatcherOptions configures NewDispatcher.
type DispatcherOptions struct {
	Logger logging.Logger
	// Debug receives the human-readable trace. Nil disables it.
	Debug *logging.DebugPrinter
}

// Dispatcher executes the single function call an assistant message carries.
//
// Responsibilities:
//   - Look up the function on the active agent (missing → recoverable outcome)
//   - Decode the JSON argument payload
//   - Inject a copy of the context variables when the function declares them
//   - Recover panics and normalize the return value
type Dispatcher struct {
	logger logging.Logger
	debug  *logging.DebugPrinter
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Dispatcher{logger: opts.Logger, debug: opts.Debug}
}

// Execute runs call against agent's functions.
//
// A call to an unknown function is not an error: the returned Outcome has
// NotFound set and its Result carries the error text for the model. Malformed
// arguments, introspection failures, function errors and panics, and
// uncoercible results are returned as errors and end the run.
func (d *Dispatcher) Execute(ctx context.Context, agent *core.Agent, call core.FunctionCall, vars core.ContextVariables) (Outcome, error) {
	out := Outcome{Name: call.Name, CallID: call.ID}

	fn, ok := agent.Function(call.Name)
	if !ok {
		d.debug.Print("Function", call.Name, "not found in function map.")
		d.logger.Warn("flow.function.not_found", "agent", agent.Name, "function", call.Name, "function_call_id", call.ID)
		out.NotFound = true
		out.Err = fmt.Errorf("%w: %s", core.ErrFunctionNotFound, call.Name)
		out.Result = core.Result{Value: core.NotFoundContent(call.Name)}
		return out, nil
	}

	args, err := decodeArguments(call)
	if err != nil {
		return out, err
	}

	d.debug.Print("Processing function call:", call.Name, "with arguments", call.Arguments)

	inject, err := core.AcceptsContextVariables(fn)
	if err != nil {
		return out, err
	}
	if inject {
		args[core.ContextVariablesParam] = vars.Clone()
	}

	start := time.Now()
	raw, err := invoke(ctx, fn, args)
	out.Duration = time.Since(start)

	if err != nil {
		err = &core.FunctionError{Function: call.Name, Err: err}
	} else {
		out.Result, err = NormalizeResult(call.Name, raw)
		if err != nil {
			d.debug.Print(err.Error())
		}
	}

	d.logExecution(agent, call, out.Duration, err)

	return out, err
}

func (d *Dispatcher) logExecution(agent *core.Agent, call core.FunctionCall, dur time.Duration, err error) {
	var pe *panicErr
	recovered := errors.As(err, &pe)

	sl, ok := d.logger.(*logging.SwarmLogger)
	if !ok {
		args := []any{
			"agent", agent.Name,
			"function", call.Name,
			"function_call_id", call.ID,
			"duration_ms", dur.Milliseconds(),
			"error", err != nil,
		}
		if recovered {
			d.logger.Error("flow.function.panic", append(args, "panic", fmt.Sprint(pe.val), "stack_trace", string(pe.stack))...)
			return
		}
		d.logger.Info("flow.function.executed", args...)
		return
	}

	sl = sl.WithContext("function_call_id", call.ID)
	sl.LogFunctionCall(call.Name, dur, err == nil, err)
	if recovered {
		sl.ErrorWithStack(err, "flow.function.panic", "function", call.Name)
	}
}

func decodeArguments(call core.FunctionCall) (core.Args, error) {
	args := core.Args{}
	if strings.TrimSpace(call.Arguments) == "" {
		return args, nil
	}

	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return nil, &core.ArgumentError{Function: call.Name, Arguments: call.Arguments, Err: err}
	}
	if args == nil {
		args = core.Args{}
	}

	return args, nil
}

func invoke(ctx context.Context, fn core.Function, args core.Args) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn.Call(ctx, args)
}

func panicError(r any) error { return &panicErr{val: r, stack: debug.Stack()} }

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }

// StackTrace implements logging.StackTracer.
func (p *panicErr) StackTrace() []byte { return p.stack }
