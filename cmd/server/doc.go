// Package main runs the termcore HTTP server.
//
// Each session is a shell behind a pseudo-terminal. Hosts create sessions,
// execute command lines against them and stream output over WebSocket.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -shell /bin/bash -read-mode quiesce
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown, every session is closed
package main
