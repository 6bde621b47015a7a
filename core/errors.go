package core

import (
	"errors"
	"fmt"
)

// ErrNoAgent is returned when a run is started without an agent.
var ErrNoAgent = errors.New("no active agent")

// ErrFunctionNotFound marks a model call to a function the active agent does
// not expose. The engine recovers from it by recording an error message.
var ErrFunctionNotFound = errors.New("function not found")

// NotFoundContent is the function-message content recorded for a call to an
// unknown function.
func NotFoundContent(name string) string {
	return fmt.Sprintf("Error: Function %s not found.", name)
}

// TransportError reports a failed completion request. It aborts the run.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion request for model %q failed: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError reports a function whose parameters cannot be introspected.
// It aborts the run before any request is sent.
type SchemaError struct {
	Function string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("failed to get parameters for function %s: %v", e.Function, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ArgumentError reports a malformed function-call argument payload.
type ArgumentError struct {
	Function  string
	Arguments string
	Err       error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for function %s: %v", e.Function, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// FunctionError reports a function that failed or panicked while executing.
type FunctionError struct {
	Function string
	Err      error
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %s failed: %v", e.Function, e.Err)
}

func (e *FunctionError) Unwrap() error { return e.Err }

// ResultCoercionError reports a function return value without a string form.
// Unlike a missing function it aborts the run.
type ResultCoercionError struct {
	Function string
	Value    any
	Err      error
}

func (e *ResultCoercionError) Error() string {
	return fmt.Sprintf(
		"failed to cast response of function %s to string: %T. Ensure that agent functions return a string or Result object: %v",
		e.Function, e.Value, e.Err,
	)
}

func (e *ResultCoercionError) Unwrap() error { return e.Err }
