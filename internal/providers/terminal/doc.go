// Package terminal provides an embeddable terminal core.
//
// A Session owns one shell process attached to a pseudo-terminal and offers a
// synchronous "execute a line, get text back" interface. A small set of
// builtin commands is answered locally; every other line is written verbatim
// to the shell and the output of the next read is returned.
//
// Architecture:
//   - Tokenize splits a line into arguments (double and single quotes share one toggle)
//   - Registry maps builtin names to Handlers and is sealed after setup
//   - process allocates the PTY, starts the shell as a session leader on the
//     slave side, pumps master reads into a queue and reaps the child
//   - Session composes the three; Manager hands out opaque handles
//   - Provider exposes the manager as service tools
//
// Builtins:
//   - omni [fix 403|fix deps|dev|sys]
//   - gh-fix, dev, sys
//
// Reads:
//   - ReadSingle (default) returns one read of up to BufferSize bytes
//   - ReadQuiesce accumulates reads until the shell is quiet for QuietPeriod
//   - Stream yields chunks as they arrive
//
// ReadTimeout bounds every read; zero restores unbounded blocking.
// Failures never surface as Go errors from Execute: the result is the
// FailureMessage or InvalidSessionMessage text instead.
//
// Example Usage:
//
//	session, err := terminal.Open(terminal.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	session.Execute("sys")       // → "System status: CPU optimal, ..."
//	session.Execute("echo hi")   // → whatever the shell wrote back
//
// Tools:
//   - terminal.create_session: Start a shell behind a new PTY
//   - terminal.execute: Run a command line in a session
//   - terminal.list_sessions: List all sessions
//   - terminal.get_session: Describe one session
//   - terminal.kill: Terminate a session
package terminal
