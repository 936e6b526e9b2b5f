package terminal

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/termcore/internal/infrastructure/monitoring"
)

// Fixed result texts returned at the Execute boundary.
const (
	// FailureMessage is returned when the shell produced no output (end of stream, I/O error or timeout).
	FailureMessage = "Command execution failed"

	// InvalidSessionMessage is returned when executing against a closed or unknown session.
	InvalidSessionMessage = "Terminal not initialized"
)

// MaxCommandSize caps a command line accepted from a network client.
const MaxCommandSize = 16 * 1024

const (
	DefaultShell        = "/bin/sh"
	DefaultBufferSize   = 4096
	DefaultReadTimeout  = 5 * time.Second
	DefaultQuietPeriod  = 150 * time.Millisecond
	DefaultCloseTimeout = 2 * time.Second

	defaultCols = 80
	defaultRows = 24
)

// ReadMode selects how passthrough output is collected
type ReadMode string

const (
	// ReadSingle returns exactly one read's worth of output.
	ReadSingle ReadMode = "single"

	// ReadQuiesce accumulates output until the shell goes quiet.
	ReadQuiesce ReadMode = "quiesce"
)

// Valid reports whether the mode is known
func (m ReadMode) Valid() bool {
	return m == ReadSingle || m == ReadQuiesce
}

// Options configures a session.
type Options struct {
	// Shell is the shell executable (defaults to /bin/sh).
	Shell string

	// Args are passed to the shell.
	Args []string

	// WorkingDir is the shell's initial directory. Empty means inherit.
	WorkingDir string

	// Env holds extra KEY=VALUE entries appended to the host environment.
	Env []string

	// ReadMode selects single-shot or quiescence reads (default single).
	ReadMode ReadMode

	// ReadTimeout bounds the wait for passthrough output. Zero waits forever.
	ReadTimeout time.Duration

	// QuietPeriod ends a quiescence read or stream once no output arrives for this long.
	QuietPeriod time.Duration

	// BufferSize is the size of a single PTY read (default 4096).
	BufferSize int

	// CloseTimeout bounds how long Close waits for the shell to be reaped.
	CloseTimeout time.Duration

	// Messages overrides the builtin texts. Nil uses DefaultMessages.
	Messages *Messages

	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Shell:        DefaultShell,
		ReadMode:     ReadSingle,
		ReadTimeout:  DefaultReadTimeout,
		QuietPeriod:  DefaultQuietPeriod,
		BufferSize:   DefaultBufferSize,
		CloseTimeout: DefaultCloseTimeout,
	}
}

// withDefaults fills unset fields. A zero ReadTimeout is kept as "wait forever".
func (o Options) withDefaults() Options {
	if o.Shell == "" {
		o.Shell = DefaultShell
	}
	if !o.ReadMode.Valid() {
		o.ReadMode = ReadSingle
	}
	if o.ReadTimeout < 0 {
		o.ReadTimeout = 0
	}
	if o.QuietPeriod <= 0 {
		o.QuietPeriod = DefaultQuietPeriod
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.CloseTimeout <= 0 {
		o.CloseTimeout = DefaultCloseTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (o Options) messages() Messages {
	if o.Messages == nil {
		return DefaultMessages()
	}
	return DefaultMessages().merge(*o.Messages)
}

// Overrides adjusts the manager's options for a single session
type Overrides struct {
	Shell      string            `json:"shell,omitempty"`
	WorkingDir string            `json:"working_dir,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
}

func (ov Overrides) apply(o Options) Options {
	if ov.Shell != "" {
		o.Shell = ov.Shell
	}
	if ov.WorkingDir != "" {
		o.WorkingDir = ov.WorkingDir
	}
	if len(ov.Env) > 0 {
		env := make([]string, 0, len(o.Env)+len(ov.Env))
		env = append(env, o.Env...)
		for k, v := range ov.Env {
			env = append(env, k+"="+v)
		}
		o.Env = env
	}
	return o
}

// SessionInfo is the public representation of a session
type SessionInfo struct {
	ID         string    `json:"id"`
	Shell      string    `json:"shell"`
	WorkingDir string    `json:"working_dir"`
	PID        int       `json:"pid"`
	ReadMode   ReadMode  `json:"read_mode"`
	Builtins   []string  `json:"builtins"`
	StartedAt  time.Time `json:"started_at"`
	Active     bool      `json:"active"`
}
