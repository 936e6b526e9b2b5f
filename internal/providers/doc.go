// Package providers holds the service providers exposed through the service
// registry.
//
// Providers:
//   - terminal: PTY-backed shell sessions with builtin commands
//   - system: host information and shell discovery
//
// Every provider implements service.Provider: a Definition describing its
// tools and an Execute method dispatching on the tool ID.
package providers
