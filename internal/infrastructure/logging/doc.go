// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON lines on stderr
//   - Development: colored console output at debug level
//
// Logs go to stderr by default so that a REPL on stdout stays readable.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Terminal session opened", zap.String("session_id", id))
//	sessions := logger.Component("terminal")
package logging
