package core

// ConversationState is the mutable state of a single run: the message
// history, the context variables and the active agent. It is owned by exactly
// one run and never shared.
//
// The caller-supplied prefix of the history (InitLen messages) is never
// modified. Function outcomes re-enter the conversation only through
// MergeFunctionResult.
type ConversationState struct {
	history []Message
	initLen int
	vars    ContextVariables
	active  *Agent
}

// NewConversationState deep-copies messages and vars so the caller's values
// are never mutated by the run.
func NewConversationState(agent *Agent, messages []Message, vars ContextVariables) *ConversationState {
	return &ConversationState{
		history: CloneMessages(messages),
		initLen: len(messages),
		vars:    vars.Clone(),
		active:  agent,
	}
}

// History returns a copy of the full message history.
func (s *ConversationState) History() []Message { return CloneMessages(s.history) }

// Len returns the current history length.
func (s *ConversationState) Len() int { return len(s.history) }

// InitLen returns the length of the caller-supplied history prefix.
func (s *ConversationState) InitLen() int { return s.initLen }

// Turns returns the number of messages appended since the run started.
func (s *ConversationState) Turns() int { return len(s.history) - s.initLen }

// ContextVariables returns a deep copy of the current context variables.
func (s *ConversationState) ContextVariables() ContextVariables { return s.vars.Clone() }

// ActiveAgent returns the agent that will serve the next request.
func (s *ConversationState) ActiveAgent() *Agent { return s.active }

// AppendAssistant appends a message produced by the model.
func (s *ConversationState) AppendAssistant(msg Message) {
	s.history = append(s.history, msg.Clone())
}

// MergeFunctionResult appends a function-role message carrying the result
// value, merges the result's context-variable delta and switches the active
// agent when the result carries one.
func (s *ConversationState) MergeFunctionResult(name, callID string, r Result) {
	s.history = append(s.history, Message{
		Role:       RoleFunction,
		Name:       name,
		ToolCallID: callID,
		Content:    r.Value,
	})
	s.vars.Merge(r.ContextVariables)
	if r.Agent != nil {
		s.active = r.Agent
	}
}

// Response builds the run output from the messages added since InitLen.
func (s *ConversationState) Response() *Response {
	return &Response{
		Messages:         CloneMessages(s.history[s.initLen:]),
		Agent:            s.active,
		ContextVariables: s.vars.Clone(),
	}
}
