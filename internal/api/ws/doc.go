// Package ws streams terminal output over WebSocket.
//
// Protocol (JSON text frames):
//
//	client: {"type":"execute","command":"ls -l"}
//	server: {"type":"output","content":"..."}   one per chunk
//	server: {"type":"complete","timestamp":...}
//	client: {"type":"ping"}  server: {"type":"pong"}
//
// Unknown message types get {"type":"error"}.
package ws
