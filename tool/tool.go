// Package tool implements the function-calling surface of agents: adapters
// that expose plain Go functions as core.Function values, handoff helpers, and
// the translator that describes an agent's functions to the model.
package tool

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
)

// ToDefinition translates fn into the schema the completion endpoint expects:
//
//	{name, description, parameters: {type: object, properties: {p: {type: string}}, required: [...]}}
//
// Every parameter is typed as a string. The reserved context-variables
// parameter is stripped. Introspection failures, unnamed and duplicate
// parameters yield a *core.SchemaError.
func ToDefinition(fn core.Function) (model.FunctionDefinition, error) {
	name := fn.Name()
	if name == "" {
		return model.FunctionDefinition{}, &core.SchemaError{Function: name, Err: errors.New("function has no name")}
	}

	params, err := fn.Parameters()
	if err != nil {
		return model.FunctionDefinition{}, &core.SchemaError{Function: name, Err: err}
	}

	properties := make(map[string]any, len(params))
	required := make([]string, 0, len(params))
	seen := make(map[string]struct{}, len(params))

	for i, p := range params {
		if p.Name == "" {
			return model.FunctionDefinition{}, &core.SchemaError{Function: name, Err: fmt.Errorf("parameter %d has no name", i)}
		}
		if _, dup := seen[p.Name]; dup {
			return model.FunctionDefinition{}, &core.SchemaError{Function: name, Err: fmt.Errorf("duplicate parameter %q", p.Name)}
		}
		seen[p.Name] = struct{}{}

		if p.Name == core.ContextVariablesParam {
			continue
		}

		prop := map[string]any{"type": "string"}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return model.FunctionDefinition{
		Name:        name,
		Description: fn.Description(),
		Parameters: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}, nil
}

// Describe translates every function of an agent. It returns nil for an empty
// list and no partial list when any translation fails.
func Describe(fns []core.Function) ([]model.FunctionDefinition, error) {
	if len(fns) == 0 {
		return nil, nil
	}

	defs := make([]model.FunctionDefinition, 0, len(fns))
	for _, fn := range fns {
		def, err := ToDefinition(fn)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, nil
}
