// Package engine implements the conversation-turn engine of the swarm.
//
// A run repeats one cycle until it terminates:
//
//  1. Request a completion for the active agent (instructions, history and
//     function schemas)
//  2. Append the assistant message, tagged with the agent's name
//  3. Dispatch the single function call it may carry
//  4. Merge the result: a function message, a context-variable delta and,
//     for handoffs, a new active agent
//
// The run ends when the model answers without a function call, when function
// execution is disabled or when MaxTurns messages were added.
//
// # Sync and streaming
//
// Engine.Run returns the final core.Response. Engine.RunStream returns a
// pull-based Stream that yields a start delimiter, the message deltas and an
// end delimiter per turn, followed by the response. Closing a stream early
// releases the transport stream and never dispatches a half-received call.
//
// # Errors
//
// Calls to unknown functions are answered with an error message and the run
// continues. Transport failures, unusable function schemas, malformed
// arguments, failing or panicking functions and uncoercible results end the
// run with a typed error from package core.
//
// # Hooks and telemetry
//
// A CallbackManager runs user hooks around model requests and function
// calls. Runs are traced (swarm.run, swarm.turn, swarm.function spans) and
// metered through OpenTelemetry providers supplied in Options.
package engine
