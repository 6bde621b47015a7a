// Package model defines the provider-agnostic transport contract between the
// turn engine and a chat-completion endpoint, plus a scripted MockModel for
// tests and examples.
//
// Core goals:
//   - Cover whole-message and incremental (streaming) completion
//   - Keep streaming pull-based: the consumer drives production via Next
//   - Normalize function definitions and function calls across vendors
//
// Providers (e.g. OpenAI, Anthropic) implement Model in subpackages so the
// engine remains decoupled from vendor SDKs.
package model
