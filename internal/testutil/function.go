package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/hupe1980/agentswarm/core"
)

// FuncSpy is a core.Function that records every call and returns a canned
// result. Example:
//
//	spy := NewFuncSpy("get_weather", "sunny", core.Parameter{Name: "location", Required: true})
//	agent := core.NewAgent("A", func(o *core.AgentOptions) { o.Functions = []core.Function{spy} })
//
// Chain WithError or WithPanic to script failures.
type FuncSpy struct {
	mu       sync.Mutex
	name     string
	params   []core.Parameter
	result   any
	err      error
	panicVal any
	calls    []core.Args
}

// NewFuncSpy creates a spy returning result.
func NewFuncSpy(name string, result any, params ...core.Parameter) *FuncSpy {
	return &FuncSpy{name: name, result: result, params: params}
}

// WithError makes every call fail with err (chainable).
func (s *FuncSpy) WithError(err error) *FuncSpy {
	s.err = err
	return s
}

// WithPanic makes every call panic with v (chainable).
func (s *FuncSpy) WithPanic(v any) *FuncSpy {
	s.panicVal = v
	return s
}

// Name implements core.Function.
func (s *FuncSpy) Name() string { return s.name }

// Description implements core.Function.
func (s *FuncSpy) Description() string { return "spy " + s.name }

// Parameters implements core.Function.
func (s *FuncSpy) Parameters() ([]core.Parameter, error) { return slices.Clone(s.params), nil }

// Call implements core.Function.
func (s *FuncSpy) Call(_ context.Context, args core.Args) (any, error) {
	s.mu.Lock()
	s.calls = append(s.calls, args)
	s.mu.Unlock()

	if s.panicVal != nil {
		panic(s.panicVal)
	}
	return s.result, s.err
}

// Calls returns the recorded argument maps in call order.
func (s *FuncSpy) Calls() []core.Args {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// BrokenFunction is a core.Function whose parameters cannot be introspected.
type BrokenFunction struct {
	FunctionName string
}

// Name implements core.Function.
func (b BrokenFunction) Name() string { return b.FunctionName }

// Description implements core.Function.
func (b BrokenFunction) Description() string { return "" }

// Parameters always fails.
func (b BrokenFunction) Parameters() ([]core.Parameter, error) {
	return nil, errors.New("signature unavailable")
}

// Call implements core.Function.
func (b BrokenFunction) Call(context.Context, core.Args) (any, error) { return nil, nil }
