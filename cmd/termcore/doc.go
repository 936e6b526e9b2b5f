// Package main is an interactive front end for a single terminal session.
//
// Each input line is executed against the session: builtins answer directly,
// everything else goes to the shell. The prompt is shown only when stdin is a
// terminal, so the command also works in pipelines:
//
//	printf 'sys\necho hi\n' | termcore -read-mode quiesce
package main
