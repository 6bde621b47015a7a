package core

import (
	"context"
	"fmt"
)

// ContextVariablesParam is the reserved parameter name through which the
// engine injects the current context variables into a function call. It is
// never exposed to the model.
const ContextVariablesParam = "context_variables"

// Parameter declares one named argument of a Function. All parameters are
// presented to the model as strings.
type Parameter struct {
	Name        string
	Description string
	Required    bool
}

// Args holds the decoded arguments of a function call.
type Args map[string]any

// String returns the argument as a string. Non-string values are formatted
// with fmt; missing arguments yield "".
func (a Args) String(name string) string {
	v, ok := a[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ContextVariables returns the injected context variables, or nil when the
// function did not declare the reserved parameter.
func (a Args) ContextVariables() ContextVariables {
	switch v := a[ContextVariablesParam].(type) {
	case ContextVariables:
		return v
	case map[string]any:
		return v
	default:
		return nil
	}
}

// Function is a callable an agent exposes to its model.
//
// Implementations must:
//   - Report a stable Name used for routing model function calls
//   - Declare their parameters (including ContextVariablesParam when they
//     want the context variables injected)
//   - Return a string, a Result, an *Agent (handoff) or any value with a
//     sensible string form
type Function interface {
	// Name returns the identifier the model uses to call this function.
	Name() string

	// Description returns a short text shown to the model. May be empty.
	Description() string

	// Parameters introspects the declared parameters. An error means the
	// function cannot be described to the model.
	Parameters() ([]Parameter, error)

	// Call executes the function with decoded arguments.
	Call(ctx context.Context, args Args) (any, error)
}

// AcceptsContextVariables reports whether fn declares the reserved
// context-variables parameter.
func AcceptsContextVariables(fn Function) (bool, error) {
	params, err := fn.Parameters()
	if err != nil {
		return false, &SchemaError{Function: fn.Name(), Err: err}
	}
	for _, p := range params {
		if p.Name == ContextVariablesParam {
			return true, nil
		}
	}
	return false, nil
}
