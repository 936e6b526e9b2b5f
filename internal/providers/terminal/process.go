//go:build !windows

package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const chunkQueueDepth = 64

// process owns the PTY master and the shell attached to its slave.
type process struct {
	cmd    *exec.Cmd
	master *os.File
	logger *zap.Logger

	// chunks carries one entry per master read and is closed at end of stream
	chunks  chan []byte
	closing chan struct{}
	exited  chan struct{}
	exitErr error

	closeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

// startProcess allocates a PTY and starts the shell on its slave side.
// On error nothing is left running and no descriptor stays open.
func startProcess(opts Options) (*process, error) {
	shell, err := exec.LookPath(opts.Shell)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrShellNotFound, opts.Shell)
	}

	// Prepare: allocate the pair and bind the child's standard streams to the slave.
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate PTY: %w", err)
	}

	if err := pty.Setsize(master, &pty.Winsize{Rows: defaultRows, Cols: defaultCols}); err != nil {
		opts.Logger.Debug("Failed to set initial PTY size", zap.Error(err))
	}

	cmd := exec.Command(shell, opts.Args...)
	cmd.Dir = opts.WorkingDir
	cmd.Env = append(os.Environ(), "TERM=dumb")
	cmd.Env = append(cmd.Env, opts.Env...)
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	// Replace: the child execs the shell or the start fails as a whole.
	if err := cmd.Start(); err != nil {
		slave.Close()
		master.Close()
		return nil, fmt.Errorf("failed to start shell %s: %w", shell, err)
	}

	// Only the child keeps the slave open from here on
	slave.Close()

	p := &process{
		cmd:          cmd,
		master:       master,
		logger:       opts.Logger,
		chunks:       make(chan []byte, chunkQueueDepth),
		closing:      make(chan struct{}),
		exited:       make(chan struct{}),
		closeTimeout: opts.CloseTimeout,
	}

	go p.pump(opts.BufferSize)
	go p.reap()

	return p, nil
}

// pump reads the master until end of stream and queues every chunk
func (p *process) pump(size int) {
	defer close(p.chunks)

	buf := make([]byte, size)
	for {
		n, err := p.master.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			select {
			case p.chunks <- chunk:
			case <-p.closing:
				return
			}
		}
		if err != nil {
			// Linux reports EIO once every slave descriptor is gone
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, syscall.EIO) {
				p.logger.Debug("PTY read failed", zap.Int("pid", p.pid()), zap.Error(err))
			}
			return
		}
	}
}

// reap waits for the shell so it never lingers as a zombie
func (p *process) reap() {
	p.exitErr = p.cmd.Wait()
	close(p.exited)
}

func (p *process) pid() int {
	return p.cmd.Process.Pid
}

// done is closed once the shell has been reaped
func (p *process) done() <-chan struct{} {
	return p.exited
}

// exitError is the shell's wait result; only meaningful after done is closed
func (p *process) exitError() error {
	select {
	case <-p.exited:
		return p.exitErr
	default:
		return nil
	}
}

func (p *process) alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// write sends the line and a trailing newline to the shell
func (p *process) write(line string) error {
	_, err := p.master.Write([]byte(line + "\n"))
	return err
}

// next waits for one chunk. A zero timeout waits until the stream ends or ctx is done.
func (p *process) next(ctx context.Context, timeout time.Duration) ([]byte, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case chunk, ok := <-p.chunks:
		if !ok {
			return nil, io.EOF
		}
		return chunk, nil
	case <-expired:
		return nil, errReadTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drain hands chunks to emit until output stays quiet for the quiet period,
// the overall timeout elapses, the stream ends, or emit returns false.
// The error is only reported when not a single chunk arrived.
func (p *process) drain(ctx context.Context, timeout, quiet time.Duration, emit func([]byte) bool) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	chunk, err := p.next(ctx, timeout)
	if err != nil {
		return err
	}
	if !emit(chunk) {
		return nil
	}

	for {
		wait := quiet
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return nil
			}
			wait = min(wait, remaining)
		}

		chunk, err := p.next(ctx, wait)
		if err != nil {
			return nil
		}
		if !emit(chunk) {
			return nil
		}
	}
}

// collect accumulates output as drain does
func (p *process) collect(ctx context.Context, timeout, quiet time.Duration) ([]byte, error) {
	var out []byte
	err := p.drain(ctx, timeout, quiet, func(chunk []byte) bool {
		out = append(out, chunk...)
		return true
	})
	return out, err
}

// close kills the shell's process group, releases the master and waits
// (bounded by closeTimeout) for the reaper. Later calls return the first result.
func (p *process) close() error {
	p.closeOnce.Do(func() {
		close(p.closing)

		if p.alive() {
			// The shell leads its own session, so its process group id is its pid
			if err := unix.Kill(-p.pid(), unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
				_ = p.cmd.Process.Kill()
			}
		}

		p.closeErr = p.master.Close()

		select {
		case <-p.exited:
		case <-time.After(p.closeTimeout):
			p.logger.Warn("Shell was not reaped before close timeout",
				zap.Int("pid", p.pid()),
				zap.Duration("timeout", p.closeTimeout),
			)
		}
	})
	return p.closeErr
}
