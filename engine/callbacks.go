package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/flow"
	"github.com/hupe1980/agentswarm/model"
)

// CallbackType defines the specific lifecycle points where callbacks can be executed.
//
// Available callback types:
//   - BeforeModel/AfterModel: Around each completion request
//   - BeforeFunction/AfterFunction: Around each dispatched function call
//   - OnContextUpdate: Before a function's context-variable delta is merged
//   - OnHandoff: After the active agent changed
//   - OnError: When a run fails
//
// Callbacks are executed synchronously and can influence execution flow
// by returning errors that terminate the run. OnError callbacks cannot.
type CallbackType string

const (
	// CallbackBeforeModel is triggered before a completion request is sent.
	// Use for request inspection, auditing, or rate limiting.
	CallbackBeforeModel CallbackType = "before_model"

	// CallbackAfterModel is triggered once the assistant message is complete
	// and before it is appended to the history.
	CallbackAfterModel CallbackType = "after_model"

	// CallbackBeforeFunction is triggered before a function call is dispatched.
	// Use for argument inspection, security checks, or auditing.
	CallbackBeforeFunction CallbackType = "before_function"

	// CallbackAfterFunction is triggered after a function call produced an
	// outcome, including calls to unknown functions.
	CallbackAfterFunction CallbackType = "after_function"

	// CallbackOnContextUpdate is triggered before a context-variable delta
	// is merged. Use for validation of the delta.
	CallbackOnContextUpdate CallbackType = "on_context_update"

	// CallbackOnHandoff is triggered after a function switched the active agent.
	CallbackOnHandoff CallbackType = "on_handoff"

	// CallbackOnError is triggered when a run fails. Errors returned by
	// OnError callbacks are ignored.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext provides context information for callback execution.
// Fields that do not apply to a callback type are nil.
type CallbackContext struct {
	// RunID identifies the run.
	RunID string

	// Agent is the agent active when the callback fired. For OnHandoff it is
	// the new agent and PreviousAgent the old one.
	Agent         *core.Agent
	PreviousAgent *core.Agent

	// Request is the completion request (BeforeModel, AfterModel).
	Request *model.Request

	// Message is the assistant message (AfterModel).
	Message *core.Message

	// FunctionCall is the dispatched call (BeforeFunction, AfterFunction).
	FunctionCall *core.FunctionCall

	// Outcome is the dispatch outcome (AfterFunction).
	Outcome *flow.Outcome

	// Delta is the context-variable delta about to be merged (OnContextUpdate).
	Delta core.ContextVariables

	// Err is the run failure (OnError).
	Err error

	// CallbackType indicates which callback type triggered this execution.
	CallbackType CallbackType

	// Metadata provides extensible storage for custom callback data.
	Metadata map[string]any
}

// Callback defines the interface for run lifecycle hooks.
//
// Implementations should be:
//   - Fast: Callbacks run synchronously and block the run
//   - Safe: Handle errors gracefully and avoid panics
//
// Callbacks that return errors will terminate the run.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	auditCallback := NewFunctionCallback(
//	    CallbackBeforeFunction,
//	    func(ctx context.Context, callbackCtx *CallbackContext) error {
//	        log.Printf("calling %s", callbackCtx.FunctionCall.Name)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager holds the registered callbacks of an engine.
//
// Callbacks are executed in registration order, and any callback returning
// an error stops execution and prevents subsequent callbacks from running.
//
// Register all callbacks before the first run; once registration is
// complete, execution is safe for concurrent use.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new callback manager instance.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback to the manager for its type.
//
// Example:
//
//	manager := NewCallbackManager()
//	manager.RegisterCallback(loggingCallback)
//	manager.RegisterCallback(validationCallback)
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks executes all registered callbacks for the specified type.
// A nil manager has no callbacks.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}

	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil
	}

	callbackCtx.CallbackType = callbackType
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback forwards lifecycle events to a logging function.
//
// Example:
//
//	logger := func(message string) {
//	    log.Printf("[ENGINE] %s", message)
//	}
//	callback := NewLoggingCallback(CallbackAfterFunction, logger)
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the callback type, run, agent and function name when present.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}

	agent := ""
	if callbackCtx.Agent != nil {
		agent = callbackCtx.Agent.Name
	}

	message := fmt.Sprintf("[%s] Run: %s, Agent: %s", c.callbackType, callbackCtx.RunID, agent)
	if callbackCtx.FunctionCall != nil {
		message += ", Function: " + callbackCtx.FunctionCall.Name
	}
	c.logger(message)

	return nil
}

// ContextValidationCallback validates context-variable deltas before they
// are merged into a run.
//
// Example:
//
//	validator := func(delta core.ContextVariables) error {
//	    if v, ok := delta["user_id"]; ok && v == nil {
//	        return errors.New("user_id cannot be nil")
//	    }
//	    return nil
//	}
//	callback := NewContextValidationCallback(validator)
type ContextValidationCallback struct {
	validator func(delta core.ContextVariables) error
}

// NewContextValidationCallback creates a new context validation callback.
func NewContextValidationCallback(validator func(delta core.ContextVariables) error) *ContextValidationCallback {
	return &ContextValidationCallback{
		validator: validator,
	}
}

// Type returns the callback type (always CallbackOnContextUpdate).
func (c *ContextValidationCallback) Type() CallbackType {
	return CallbackOnContextUpdate
}

// Execute runs the validator against the delta.
func (c *ContextValidationCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.validator != nil && callbackCtx.Delta != nil {
		return c.validator(callbackCtx.Delta)
	}
	return nil
}
