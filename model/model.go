package model

import (
	"context"

	"github.com/hupe1980/agentswarm/core"
)

// FunctionDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// FunctionCallPolicy tells the model whether it may call functions.
type FunctionCallPolicy string

const (
	FunctionCallAuto FunctionCallPolicy = "auto"
	FunctionCallNone FunctionCallPolicy = "none"
)

// Request captures the normalized completion input built by the engine.
type Request struct {
	Model        string               `json:"model"`
	Messages     []core.Message       `json:"messages"` // System message first
	Functions    []FunctionDefinition `json:"functions,omitempty"`
	FunctionCall FunctionCallPolicy   `json:"function_call"`
	Stream       bool                 `json:"stream"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name              string `json:"name"`
	Provider          string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsFunctions bool   `json:"supports_functions"`
}

// Stream is a pull-based sequence of deltas for one streamed completion.
//
// Next advances to the next delta and reports whether one is available;
// Current returns it. After Next returns false, Err reports why. Close
// releases the underlying transport resources and is safe to call more than
// once, including before the stream is exhausted.
type Stream interface {
	Next() bool
	Current() core.Delta
	Err() error
	Close() error
}

// Model is the completion transport used by the turn engine.
//
// Implementations must be safe for concurrent use by independent runs.
// Retries and timeouts are the implementation's responsibility; the engine
// performs none.
type Model interface {
	// Complete performs a non-streaming request and returns the assistant
	// message. At most one function call is reported per message.
	Complete(ctx context.Context, req Request) (*core.Message, error)

	// Stream performs a streaming request. The returned Stream must be closed
	// by the caller.
	Stream(ctx context.Context, req Request) (Stream, error)

	// Info returns information about the model implementation.
	Info() Info
}
