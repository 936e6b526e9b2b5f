package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/termcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termcore/internal/shared/id"
)

// Session is one shell behind a PTY plus the builtin commands intercepted in front of it.
//
// A Session returned by Open is ready. After Close every Execute returns
// InvalidSessionMessage. Passthrough calls are serialised by an internal lock.
type Session struct {
	id        string
	opts      Options
	proc      *process
	registry  *Registry
	startedAt time.Time

	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu     sync.Mutex
	closed atomic.Bool
}

// Open allocates a PTY, starts the shell and registers the builtins.
// It returns either a ready session or an error, never both.
func Open(opts Options) (*Session, error) {
	opts = opts.withDefaults()

	registry := NewRegistry()
	if err := RegisterBuiltins(registry, opts.messages()); err != nil {
		return nil, err
	}
	registry.Seal()

	proc, err := startProcess(opts)
	if err != nil {
		opts.Metrics.RecordSessionFailure(failureStage(err))
		opts.Logger.Error("Failed to open terminal session",
			zap.String("shell", opts.Shell),
			zap.Error(err),
		)
		return nil, err
	}

	s := &Session{
		id:        string(id.NewSessionID()),
		opts:      opts,
		proc:      proc,
		registry:  registry,
		startedAt: time.Now(),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}

	s.metrics.SessionOpened()
	s.logger.Info("Terminal session opened",
		zap.String("session_id", s.id),
		zap.String("shell", opts.Shell),
		zap.Int("pid", proc.pid()),
		zap.String("read_mode", string(opts.ReadMode)),
	)

	return s, nil
}

// ID returns the session handle
func (s *Session) ID() string {
	return s.id
}

// Execute runs one command line and returns its output as text
func (s *Session) Execute(line string) string {
	return s.ExecuteContext(context.Background(), line)
}

// ExecuteContext is Execute with cancellation of the passthrough read.
//
// Empty input yields "". A builtin match yields exactly the builtin's output.
// Anything else is written verbatim to the shell and one read (or, in
// quiescence mode, a quiet-terminated run of reads) is returned.
func (s *Session) ExecuteContext(ctx context.Context, line string) string {
	if s == nil || s.closed.Load() {
		if s != nil {
			s.metrics.RecordCommand(monitoring.KindInvalid, 0)
		}
		return InvalidSessionMessage
	}

	timer := monitoring.NewTimer(s.metrics)

	tokens := Tokenize(line)
	if len(tokens) == 0 {
		timer.Stop(monitoring.KindEmpty)
		return ""
	}

	if handler, ok := s.registry.Lookup(tokens[0]); ok {
		out := handler.Handle(tokens[1:])
		timer.Stop(monitoring.KindBuiltin)
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		timer.Stop(monitoring.KindInvalid)
		return InvalidSessionMessage
	}

	out := s.passthrough(ctx, line)
	timer.Stop(monitoring.KindPassthrough)
	return out
}

// passthrough forwards the raw line to the shell. Callers hold s.mu.
func (s *Session) passthrough(ctx context.Context, line string) string {
	if err := s.proc.write(line); err != nil {
		s.fail("write", err)
		return FailureMessage
	}

	var (
		out []byte
		err error
	)
	switch s.opts.ReadMode {
	case ReadQuiesce:
		out, err = s.proc.collect(ctx, s.opts.ReadTimeout, s.opts.QuietPeriod)
	default:
		out, err = s.proc.next(ctx, s.opts.ReadTimeout)
	}
	if err != nil {
		s.fail(readFailureReason(err), err)
		return FailureMessage
	}

	s.metrics.ObservePassthroughBytes(len(out))
	return decode(out)
}

// Stream runs a command line and yields its output chunk by chunk.
//
// The sequence ends when the shell stays quiet for the quiet period, the
// read timeout elapses, ctx is done, or the stream ends. Builtins yield their
// single result. The sequence can be iterated once; later iterations yield nothing.
func (s *Session) Stream(ctx context.Context, line string) iter.Seq[string] {
	var used atomic.Bool

	return func(yield func(string) bool) {
		if !used.CompareAndSwap(false, true) {
			return
		}
		if s == nil || s.closed.Load() {
			yield(InvalidSessionMessage)
			return
		}

		timer := monitoring.NewTimer(s.metrics)

		tokens := Tokenize(line)
		if len(tokens) == 0 {
			timer.Stop(monitoring.KindEmpty)
			return
		}
		if handler, ok := s.registry.Lookup(tokens[0]); ok {
			out := handler.Handle(tokens[1:])
			timer.Stop(monitoring.KindBuiltin)
			yield(out)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		defer timer.Stop(monitoring.KindPassthrough)

		if s.closed.Load() {
			yield(InvalidSessionMessage)
			return
		}

		if err := s.proc.write(line); err != nil {
			s.fail("write", err)
			yield(FailureMessage)
			return
		}

		total := 0
		err := s.proc.drain(ctx, s.opts.ReadTimeout, s.opts.QuietPeriod, func(chunk []byte) bool {
			total += len(chunk)
			return yield(decode(chunk))
		})
		if err != nil {
			s.fail(readFailureReason(err), err)
			yield(FailureMessage)
			return
		}
		s.metrics.ObservePassthroughBytes(total)
	}
}

// Close terminates the shell and releases the PTY. Repeated calls are no-ops.
func (s *Session) Close() error {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := s.proc.close()
	s.metrics.SessionClosed()
	s.logger.Info("Terminal session closed",
		zap.String("session_id", s.id),
		zap.Int("pid", s.proc.pid()),
	)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("close session %s: %w", s.id, err)
	}
	return nil
}

// Done is closed when the shell process has exited and been reaped
func (s *Session) Done() <-chan struct{} {
	return s.proc.done()
}

// Err returns the shell's exit status once Done is closed
func (s *Session) Err() error {
	return s.proc.exitError()
}

// Info returns a snapshot of the session
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:         s.id,
		Shell:      s.opts.Shell,
		WorkingDir: s.opts.WorkingDir,
		PID:        s.proc.pid(),
		ReadMode:   s.opts.ReadMode,
		Builtins:   s.registry.Names(),
		StartedAt:  s.startedAt,
		Active:     !s.closed.Load() && s.proc.alive(),
	}
}

func (s *Session) fail(reason string, err error) {
	s.metrics.RecordPassthroughFailure(reason)
	s.logger.Debug("Shell passthrough failed",
		zap.String("session_id", s.id),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

// decode converts PTY bytes to valid UTF-8 text
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func readFailureReason(err error) string {
	switch {
	case errors.Is(err, io.EOF):
		return "eof"
	case errors.Is(err, errReadTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func failureStage(err error) string {
	if errors.Is(err, ErrShellNotFound) {
		return "lookup"
	}
	return "spawn"
}
