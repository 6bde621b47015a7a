package core

// Result is the normalized outcome of a function call: a textual value, an
// optional handoff agent and an optional context-variable delta.
type Result struct {
	Value            string
	Agent            *Agent
	ContextVariables ContextVariables
}

// Response is the outcome of a run: the messages added beyond the caller's
// history, the final active agent and the final context variables.
type Response struct {
	Messages         []Message
	Agent            *Agent
	ContextVariables ContextVariables
}
