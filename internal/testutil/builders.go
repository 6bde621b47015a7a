package testutil

import "github.com/hupe1980/agentswarm/core"

// NewAgent builds an agent with static instructions and the given functions.
func NewAgent(name, instructions string, fns ...core.Function) *core.Agent {
	return core.NewAgent(name, func(o *core.AgentOptions) {
		o.Instructions = core.NewInstructions(instructions)
		o.Functions = fns
	})
}

// Conversation builds a history alternating user and assistant messages,
// starting with the user.
func Conversation(texts ...string) []core.Message {
	msgs := make([]core.Message, 0, len(texts))
	for i, text := range texts {
		if i%2 == 0 {
			msgs = append(msgs, core.UserMessage(text))
			continue
		}
		msgs = append(msgs, core.AssistantMessage(text))
	}
	return msgs
}
