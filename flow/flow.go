// Package flow provides the per-turn building blocks of a swarm run.
//
// The turn engine composes them into its request/dispatch/merge loop:
//
//   - BuildRequest assembles the completion request for the active agent
//   - Dispatcher executes the single function call a model emitted
//   - NormalizeResult coerces a function's return value into a core.Result
//   - MergeDelta folds streamed fragments into the in-progress message
//
// None of these hold per-run state, so they are safe to share between
// concurrent runs.
package flow

import (
	"fmt"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/tool"
)

// BuildRequest assembles the completion request for agent: the resolved
// instructions as a leading system message, followed by a copy of history.
// Functions is nil when the agent exposes none. A non-empty modelOverride
// replaces the agent's model.
func BuildRequest(agent *core.Agent, history []core.Message, vars core.ContextVariables, modelOverride string, stream bool) (model.Request, error) {
	instructions, err := agent.Instructions.Resolve(vars.Clone())
	if err != nil {
		return model.Request{}, fmt.Errorf("failed to resolve instructions for agent %s: %w", agent.Name, err)
	}

	functions, err := tool.Describe(agent.Functions)
	if err != nil {
		return model.Request{}, err
	}

	messages := make([]core.Message, 0, len(history)+1)
	messages = append(messages, core.SystemMessage(instructions))
	messages = append(messages, core.CloneMessages(history)...)

	modelName := agent.Model
	if modelOverride != "" {
		modelName = modelOverride
	}

	return model.Request{
		Model:        modelName,
		Messages:     messages,
		Functions:    functions,
		FunctionCall: model.FunctionCallPolicy(agent.ToolChoice.FunctionCallPolicy()),
		Stream:       stream,
	}, nil
}
