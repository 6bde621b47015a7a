// Package core provides the foundational domain types shared by every layer of
// agentswarm. It defines:
//
//   - Agents (named personas with a model target, instructions and functions)
//   - Messages and streaming deltas (role-tagged conversation units)
//   - Context variables (auxiliary state threaded through every turn)
//   - ConversationState (history, variables and the active agent of one run)
//   - Results and Responses (normalized function outcomes and run outputs)
//   - The error taxonomy surfaced by the turn engine
//
// The package keeps orchestration and transport concerns out of scope so that
// the engine, the function dispatcher and model adapters can depend on a small,
// stable vocabulary.
package core
