package terminal

import (
	"fmt"
	"sort"
	"sync"
)

// Handler runs a builtin command with the arguments that followed its name.
type Handler interface {
	Handle(args []string) string
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(args []string) string

// Handle calls f(args).
func (f HandlerFunc) Handle(args []string) string {
	return f(args)
}

// Registry maps builtin command names to handlers.
// Names are matched exactly and case-sensitively. Once sealed the registry is read-only.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	sealed   bool
}

// NewRegistry creates an empty, unsealed registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler under name
func (r *Registry) Register(name string, handler Handler) error {
	if name == "" {
		return ErrEmptyCommandName
	}
	if handler == nil {
		return fmt.Errorf("nil handler for command %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrRegistrySealed, name)
	}
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}

	r.handlers[name] = handler
	return nil
}

// Lookup returns the handler registered under name
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[name]
	return handler, ok
}

// Seal makes the registry read-only
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Names returns the registered command names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
