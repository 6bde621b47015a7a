// Package agentswarm provides a high-level façade over the turn engine for
// building systems of cooperating agents. Most applications interact with
// this package by:
//  1. Creating a Swarm via New() with a completion transport, or via
//     NewFromConfig() from a YAML configuration
//  2. Declaring agents with core.NewAgent and their functions with the tool
//     package (including tool.TransferTo for handoffs)
//  3. Running a conversation synchronously (Run) or as a stream (RunStream)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise.
package agentswarm

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentswarm/config"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/engine"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/model/anthropic"
	"github.com/hupe1980/agentswarm/model/openai"
)

// Options configures the Swarm instance.
type Options struct {
	// Engine configures the underlying turn engine (logger, telemetry,
	// concurrency limit, callbacks).
	Engine []func(o *engine.Options)

	// RunDefaults are applied to every run before the caller's own run
	// options.
	RunDefaults []func(o *engine.RunOptions)
}

// Swarm is the high-level façade around a single engine and its transport.
type Swarm struct {
	engine      *engine.Engine
	runDefaults []func(o *engine.RunOptions)
}

// New creates a Swarm backed by m.
func New(m model.Model, optFns ...func(o *Options)) *Swarm {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Swarm{
		engine:      engine.New(m, opts.Engine...),
		runDefaults: opts.RunDefaults,
	}
}

// NewFromConfig builds the transport, logger and run defaults described by
// cfg. A nil cfg uses config.Default().
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*Swarm, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := logging.NewLogger(cfg.Logging.LoggerConfig())

	m, err := NewModelFromConfig(cfg.Provider, logger)
	if err != nil {
		return nil, err
	}

	base := func(o *Options) {
		o.Engine = append(o.Engine, func(eo *engine.Options) {
			eo.Logger = logger
			eo.Config.MaxConcurrentRuns = cfg.Engine.MaxConcurrentRuns
		})
		o.RunDefaults = append(o.RunDefaults, func(ro *engine.RunOptions) {
			ro.Debug = cfg.Engine.Debug
			ro.ExecuteFunctions = cfg.Engine.ExecuteFunctions
			if cfg.Engine.MaxTurns > 0 {
				ro.MaxTurns = cfg.Engine.MaxTurns
			}
		})
	}

	return New(m, append([]func(o *Options){base}, optFns...)...), nil
}

// NewModelFromConfig constructs the completion transport named by p.
func NewModelFromConfig(p config.ProviderConfig, logger logging.Logger) (model.Model, error) {
	switch p.Name {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if p.Model != "" {
				o.Model = p.Model
			}
			o.Temperature = p.Temperature
			if p.MaxTokens > 0 {
				o.MaxCompletionTokens = p.MaxTokens
			}
			o.APIKey = p.APIKey()
			o.BaseURL = p.BaseURL
			o.Logger = logger
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if p.Model != "" {
				o.Model = anthropic.Model(p.Model)
			}
			o.Temperature = p.Temperature
			if p.MaxTokens > 0 {
				o.MaxTokens = p.MaxTokens
			}
			o.APIKey = p.APIKey()
			o.BaseURL = p.BaseURL
			o.Logger = logger
		}), nil
	case config.ProviderMock:
		name := p.Model
		if name == "" {
			name = "mock"
		}
		return model.NewMockModel(name), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", p.Name)
	}
}

// Engine exposes the underlying turn engine.
func (s *Swarm) Engine() *engine.Engine { return s.engine }

// Run executes a conversation synchronously. See engine.Engine.Run.
func (s *Swarm) Run(ctx context.Context, agent *core.Agent, messages []core.Message, optFns ...func(o *engine.RunOptions)) (*core.Response, error) {
	return s.engine.Run(ctx, agent, messages, s.runOptions(optFns)...)
}

// RunStream starts a streaming conversation. See engine.Engine.RunStream.
func (s *Swarm) RunStream(ctx context.Context, agent *core.Agent, messages []core.Message, optFns ...func(o *engine.RunOptions)) (*engine.Stream, error) {
	return s.engine.RunStream(ctx, agent, messages, s.runOptions(optFns)...)
}

func (s *Swarm) runOptions(optFns []func(o *engine.RunOptions)) []func(o *engine.RunOptions) {
	if len(s.runDefaults) == 0 {
		return optFns
	}
	out := make([]func(o *engine.RunOptions), 0, len(s.runDefaults)+len(optFns))
	out = append(out, s.runDefaults...)
	return append(out, optFns...)
}
