package core

// ToolChoice controls whether the model may call the agent's functions.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call a function.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forbids function calls.
	ToolChoiceNone ToolChoice = "none"
	// ToolChoiceRequired is accepted for compatibility and sent as auto.
	ToolChoiceRequired ToolChoice = "required"
)

// FunctionCallPolicy maps the tool choice onto the policy sent to the
// completion endpoint. Only "auto" and "none" are ever produced.
func (c ToolChoice) FunctionCallPolicy() string {
	if c == ToolChoiceNone {
		return string(ToolChoiceNone)
	}
	return string(ToolChoiceAuto)
}

// Default values applied by NewAgent.
const (
	DefaultModel        = "gpt-4o"
	DefaultInstructions = "You are a helpful agent."
)

// Agent is a named persona backed by a completion model and an optional set of
// callable functions. Agents are treated as immutable values: the engine never
// mutates one, it only swaps which agent is active.
type Agent struct {
	Name         string
	Model        string
	Instructions Instructions
	Functions    []Function
	ToolChoice   ToolChoice
}

// AgentOptions configures NewAgent.
type AgentOptions struct {
	Model        string
	Instructions Instructions
	Functions    []Function
	ToolChoice   ToolChoice
}

// NewAgent creates an agent with defaults for every unset option.
func NewAgent(name string, optFns ...func(o *AgentOptions)) *Agent {
	opts := AgentOptions{
		Model:        DefaultModel,
		Instructions: NewInstructions(DefaultInstructions),
		ToolChoice:   ToolChoiceAuto,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Agent{
		Name:         name,
		Model:        opts.Model,
		Instructions: opts.Instructions,
		Functions:    opts.Functions,
		ToolChoice:   opts.ToolChoice,
	}
}

// Function returns the agent's function registered under name.
// When several functions share a name the last one wins.
func (a *Agent) Function(name string) (Function, bool) {
	var (
		found Function
		ok    bool
	)
	for _, fn := range a.Functions {
		if fn.Name() == name {
			found, ok = fn, true
		}
	}
	return found, ok
}
