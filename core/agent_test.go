package core

import (
	"context"
	"errors"
	"testing"
)

type stubFunction struct {
	name   string
	params []Parameter
	err    error
}

func (f stubFunction) Name() string                            { return f.name }
func (f stubFunction) Description() string                     { return "" }
func (f stubFunction) Parameters() ([]Parameter, error)        { return f.params, f.err }
func (f stubFunction) Call(context.Context, Args) (any, error) { return f.name, nil }

func TestNewAgent_Defaults(t *testing.T) {
	a := NewAgent("Agent")

	if a.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", a.Model, DefaultModel)
	}
	if a.ToolChoice != ToolChoiceAuto {
		t.Errorf("ToolChoice = %q, want auto", a.ToolChoice)
	}
	text, err := a.Instructions.Resolve(nil)
	if err != nil || text != DefaultInstructions {
		t.Errorf("Instructions = %q (%v), want %q", text, err, DefaultInstructions)
	}
}

func TestAgent_FunctionLastMatchWins(t *testing.T) {
	first := stubFunction{name: "f", params: []Parameter{{Name: "a"}}}
	second := stubFunction{name: "f", params: []Parameter{{Name: "b"}}}
	a := NewAgent("A", func(o *AgentOptions) {
		o.Functions = []Function{first, second}
	})

	fn, ok := a.Function("f")
	if !ok {
		t.Fatal("function not found")
	}
	if params, _ := fn.Parameters(); params[0].Name != "b" {
		t.Errorf("expected the last registered function, got params %+v", params)
	}

	if _, ok := a.Function("missing"); ok {
		t.Error("unexpected match for missing function")
	}
}

func TestToolChoice_FunctionCallPolicy(t *testing.T) {
	tests := map[ToolChoice]string{
		ToolChoiceAuto:     "auto",
		ToolChoiceNone:     "none",
		ToolChoiceRequired: "auto",
		"":                 "auto",
	}
	for choice, want := range tests {
		if got := choice.FunctionCallPolicy(); got != want {
			t.Errorf("%q.FunctionCallPolicy() = %q, want %q", choice, got, want)
		}
	}
}

func TestInstructions_Variants(t *testing.T) {
	static := NewInstructions("static")
	if !static.IsStatic() {
		t.Error("expected static instructions")
	}

	fn := NewInstructionsFromFunc(func(vars ContextVariables) (string, error) {
		return "Hello " + vars.String("name"), nil
	})
	if fn.IsStatic() {
		t.Error("expected function instructions")
	}
	if got, _ := fn.Resolve(ContextVariables{"name": "Ada"}); got != "Hello Ada" {
		t.Errorf("Resolve = %q", got)
	}

	tmpl, err := NewInstructionsFromTemplate(`Help {{default "there" .name}}.`)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if got, _ := tmpl.Resolve(nil); got != "Help there." {
		t.Errorf("Resolve(nil) = %q", got)
	}
	if got, _ := tmpl.Resolve(ContextVariables{"name": "Bob"}); got != "Help Bob." {
		t.Errorf("Resolve = %q", got)
	}

	if _, err := NewInstructionsFromTemplate("{{.broken"); err == nil {
		t.Error("expected parse error")
	}
}

func TestAcceptsContextVariables(t *testing.T) {
	ok, err := AcceptsContextVariables(stubFunction{name: "f", params: []Parameter{{Name: ContextVariablesParam}}})
	if err != nil || !ok {
		t.Errorf("AcceptsContextVariables = %v, %v", ok, err)
	}

	boom := errors.New("boom")
	_, err = AcceptsContextVariables(stubFunction{name: "bad", err: boom})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) || schemaErr.Function != "bad" || !errors.Is(err, boom) {
		t.Errorf("expected SchemaError wrapping boom, got %v", err)
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	errs := []error{
		&TransportError{Model: "m", Err: cause},
		&SchemaError{Function: "f", Err: cause},
		&ArgumentError{Function: "f", Arguments: "{", Err: cause},
		&FunctionError{Function: "f", Err: cause},
		&ResultCoercionError{Function: "f", Value: make(chan int), Err: cause},
	}
	for _, err := range errs {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}

	if got := NotFoundContent("lookup"); got != "Error: Function lookup not found." {
		t.Errorf("NotFoundContent = %q", got)
	}
}

func TestArgs_Accessors(t *testing.T) {
	args := Args{
		"s":                   "x",
		"n":                   3,
		ContextVariablesParam: map[string]any{"k": "v"},
	}
	if args.String("s") != "x" || args.String("n") != "3" || args.String("missing") != "" {
		t.Errorf("unexpected String results")
	}
	if args.ContextVariables()["k"] != "v" {
		t.Errorf("ContextVariables = %v", args.ContextVariables())
	}
	if (Args{}).ContextVariables() != nil {
		t.Error("expected nil context variables")
	}
}
