package terminal

import "errors"

// Sentinel errors for the terminal package.
var (
	// ErrSessionClosed is returned when an operation targets a closed session.
	ErrSessionClosed = errors.New("terminal session is closed")

	// ErrSessionNotFound is returned when a session handle is unknown.
	ErrSessionNotFound = errors.New("terminal session not found")

	// ErrTooManySessions is returned when the manager is at capacity.
	ErrTooManySessions = errors.New("maximum terminal sessions reached")

	// ErrShellNotFound is returned when the shell executable cannot be resolved.
	ErrShellNotFound = errors.New("shell not found")

	// ErrRegistrySealed is returned when registering into a sealed registry.
	ErrRegistrySealed = errors.New("command registry is sealed")

	// ErrDuplicateCommand is returned when a command name is registered twice.
	ErrDuplicateCommand = errors.New("command already registered")

	// ErrEmptyCommandName is returned for a registration without a name.
	ErrEmptyCommandName = errors.New("command name cannot be empty")

	// ErrUnsupportedPolicyFormat is returned for builtin policy files that are neither YAML nor TOML.
	ErrUnsupportedPolicyFormat = errors.New("unsupported builtin policy format")

	errReadTimeout = errors.New("pty read timed out")
)
