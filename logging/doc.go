// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer SwarmLogger with contextual
// helpers (run, agent, component) and domain specific logging helpers for
// functions, models and runs.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the engine, the dispatcher and the model transports use
// for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SwarmLogger built on Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - DebugPrinter for the human-readable trace printed when a run is started
//     in debug mode
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	eng := engine.New(m, func(o *engine.Options) { o.Logger = logger })
package logging
