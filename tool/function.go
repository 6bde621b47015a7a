package tool

import (
	"context"
	"slices"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/util"
)

// ValidationError represents a missing required argument.
type ValidationError = util.ValidationError

// Func is the signature of a plain Go function exposed through FunctionTool.
// It may return a string, a core.Result, a *core.Agent (handoff) or any value
// with a sensible string form.
type Func func(ctx context.Context, args core.Args) (any, error)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// core.Function.
//
// Responsibilities:
//   - Holds the declared parameter list (name, description, required flag)
//   - Checks that required arguments are present before execution
//   - Invokes the wrapped function with the decoded arguments
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FunctionTool struct {
	// Identifier used by the model (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// Declared parameters
	params []core.Parameter
	// Deferred introspection failure, reported by Parameters
	paramsErr error
	// User supplied implementation
	fn Func
}

// NewFunction constructs a FunctionTool from an explicit parameter list.
//
// Example:
//
//	weather := NewFunction(
//	  "get_weather",
//	  "Get the current weather for a location",
//	  []core.Parameter{{Name: "location", Required: true}},
//	  func(ctx context.Context, args core.Args) (any, error) {
//	    return "sunny in " + args.String("location"), nil
//	  },
//	)
func NewFunction(name, description string, params []core.Parameter, fn Func) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		params:      slices.Clone(params),
		fn:          fn,
	}
}

// NewFunctionFromStruct derives the parameter list from a struct using
// reflection. If structType is not a struct, the failure is reported when the
// function is described to the model.
//
// Example:
//
//	type WeatherArgs struct {
//	  Location string `json:"location" description:"City name"`
//	  Unit     string `json:"unit,omitempty"`
//	}
//
//	weather := NewFunctionFromStruct("get_weather", "Get the weather", WeatherArgs{}, fn)
func NewFunctionFromStruct(name, description string, structType any, fn Func) *FunctionTool {
	t := NewFunction(name, description, nil, fn)

	fields, err := util.FieldsFromStruct(structType)
	if err != nil {
		t.paramsErr = err
		return t
	}

	for _, f := range fields {
		t.params = append(t.params, core.Parameter{Name: f.Name, Description: f.Description, Required: f.Required})
	}

	return t
}

// Name returns the unique function name used for routing model calls.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns a copy of the declared parameters.
func (t *FunctionTool) Parameters() ([]core.Parameter, error) {
	if t.paramsErr != nil {
		return nil, t.paramsErr
	}
	return slices.Clone(t.params), nil
}

// Call checks required arguments then invokes the wrapped function. A missing
// argument yields a *ValidationError.
func (t *FunctionTool) Call(ctx context.Context, args core.Args) (any, error) {
	required := make([]string, 0, len(t.params))
	for _, p := range t.params {
		if p.Required {
			required = append(required, p.Name)
		}
	}

	if err := util.ValidateRequired(args, required); err != nil {
		return nil, err
	}

	return t.fn(ctx, args)
}
