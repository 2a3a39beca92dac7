// Package app provides the orchestration layer for riv.
//
// # Overview
//
// This package wires together configuration, logging, the service client,
// health polling and the UI. It is the composition root where every
// dependency is built and connected.
//
// # Startup
//
//  1. Load config from ~/.config/riv/config.toml with RIV_* env overrides
//  2. Open the log file and build a slog logger tagged with a session UUID
//  3. Load preferences (theme); a broken prefs file is logged, not fatal
//  4. Build the rivapi client with the configured timeout and logger
//  5. Create the shared state.Store and launch the health poller
//  6. Start the TUI and block until the user quits or the context cancels
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()       Read config.toml + env
//	       ├─────> openLogger()        slog text handler on the log file
//	       ├─────> rivapi.NewClient()  HTTP client for the service
//	       ├─────> state.Store{}       Shared health snapshot
//	       ├─────> StartPoller()       Background health checks
//	       └─────> ui.Run()            Start TUI (blocks)
//
// # Polling Behavior
//
// The poller calls GET /health once per interval (config poll_seconds,
// overridden by -poll). Each failure doubles the wait, up to 30 seconds, and
// the first success resets it. The UI reads store snapshots on its own tick,
// so a slow or dead service never stalls the interface. Only transitions
// between reachable and unreachable are logged.
//
// # Error Handling
//
// Fatal (returned from Run): invalid config, an unwritable log file, or a
// malformed api_bind. Everything else, including an unreachable service at
// startup, is shown in the UI and retried.
package app
