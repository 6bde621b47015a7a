package flow

import "github.com/hupe1980/agentswarm/core"

// MergeDelta folds one streamed fragment into target. Textual fields
// concatenate in delivery order. A function-call fragment creates the
// target's function call on first sight. Role and sender are never folded;
// the caller owns them.
func MergeDelta(target *core.Message, d core.Delta) {
	target.Content += d.Content

	if d.FunctionCall == nil {
		return
	}

	if target.FunctionCall == nil {
		target.FunctionCall = &core.FunctionCall{}
	}

	target.FunctionCall.ID += d.FunctionCall.ID
	target.FunctionCall.Name += d.FunctionCall.Name
	target.FunctionCall.Arguments += d.FunctionCall.Arguments
}
