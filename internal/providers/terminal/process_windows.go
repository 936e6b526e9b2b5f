//go:build windows

package terminal

import (
	"context"
	"errors"
	"time"
)

// ErrPTYNotSupported is returned on platforms without Unix pseudo-terminals.
var ErrPTYNotSupported = errors.New("PTY not supported on this platform")

// process is never constructed on Windows; startProcess always fails.
type process struct{}

func startProcess(Options) (*process, error) {
	return nil, ErrPTYNotSupported
}

func (p *process) pid() int { return 0 }

func (p *process) alive() bool { return false }

func (p *process) done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (p *process) exitError() error { return nil }

func (p *process) write(string) error { return ErrPTYNotSupported }

func (p *process) next(context.Context, time.Duration) ([]byte, error) {
	return nil, ErrPTYNotSupported
}

func (p *process) drain(context.Context, time.Duration, time.Duration, func([]byte) bool) error {
	return ErrPTYNotSupported
}

func (p *process) collect(context.Context, time.Duration, time.Duration) ([]byte, error) {
	return nil, ErrPTYNotSupported
}

func (p *process) close() error { return nil }
