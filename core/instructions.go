package core

import (
	"fmt"

	"github.com/hupe1980/agentswarm/internal/util"
)

// InstructionsFunc derives instruction text from the current context variables.
// It must not modify the variables it receives.
type InstructionsFunc func(vars ContextVariables) (string, error)

// Instructions represents either a static instruction string or a function of
// the context variables. This mirrors a union of string | func in a Go-idiomatic way.
type Instructions struct {
	text string
	fn   InstructionsFunc
}

// NewInstructions creates Instructions from a static string.
func NewInstructions(text string) Instructions { return Instructions{text: text} }

// NewInstructionsFromFunc creates Instructions from a function.
func NewInstructionsFromFunc(fn InstructionsFunc) Instructions { return Instructions{fn: fn} }

// NewInstructionsFromTemplate creates function-backed Instructions that render
// text as a Go template against the context variables, e.g.
// "Help {{.user_name}} with their order." Optional variables can be guarded
// with the default helper: {{default "there" .user_name}}.
func NewInstructionsFromTemplate(text string) (Instructions, error) {
	tmpl, err := util.ParseTemplate(text)
	if err != nil {
		return Instructions{}, fmt.Errorf("parse instructions template: %w", err)
	}

	return NewInstructionsFromFunc(func(vars ContextVariables) (string, error) {
		return util.ExecuteTemplate(tmpl, vars)
	}), nil
}

// IsStatic returns true if the instructions are backed by a static string.
func (i Instructions) IsStatic() bool { return i.fn == nil }

// Resolve returns the instruction text, invoking the function if needed.
func (i Instructions) Resolve(vars ContextVariables) (string, error) {
	if i.fn != nil {
		return i.fn(vars)
	}
	return i.text, nil
}
