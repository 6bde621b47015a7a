package core

// Role tags the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// FunctionCall describes a function invocation requested by the model.
type FunctionCall struct {
	ID        string `json:"id,omitempty"` // Provider-assigned call id, if any
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // Raw JSON argument payload
}

// Message is a role-tagged unit of conversation. Messages are immutable once
// appended to a history.
type Message struct {
	Role         Role          `json:"role"`
	Content      string        `json:"content"`
	Name         string        `json:"name,omitempty"` // Function name on function-role messages
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
	ToolCallID   string        `json:"tool_call_id,omitempty"` // Links a function result to its call
	Sender       string        `json:"sender,omitempty"`       // Agent that produced an assistant message
}

// SystemMessage creates a system-role message.
func SystemMessage(text string) Message { return Message{Role: RoleSystem, Content: text} }

// UserMessage creates a user-role message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// AssistantMessage creates an assistant-role text message.
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// HasFunctionCall reports whether the message requests a function call.
func (m Message) HasFunctionCall() bool { return m.FunctionCall != nil }

// Clone returns a copy that shares no pointers with m.
func (m Message) Clone() Message {
	if m.FunctionCall != nil {
		fc := *m.FunctionCall
		m.FunctionCall = &fc
	}
	return m
}

// CloneMessages deep-copies a message slice. A nil input yields an empty,
// non-nil slice.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// FunctionCallDelta is a fragment of a streamed function call.
type FunctionCallDelta struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Delta is a transient fragment of an in-progress streamed message. Only its
// cumulative merge survives as a Message.
type Delta struct {
	Role         Role               `json:"role,omitempty"`
	Sender       string             `json:"sender,omitempty"`
	Content      string             `json:"content,omitempty"`
	FunctionCall *FunctionCallDelta `json:"function_call,omitempty"`
}
