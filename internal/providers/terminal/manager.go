package terminal

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Manager hands out opaque session handles to hosts.
//
// Unknown or destroyed handles never panic: Execute answers with
// InvalidSessionMessage and the other methods return ErrSessionNotFound.
type Manager struct {
	sessions    sync.Map // map[string]*Session
	opts        Options
	maxSessions int
	logger      *zap.Logger

	mu   sync.Mutex
	live int
}

// NewManager creates a session manager. A maxSessions of zero means unlimited.
func NewManager(opts Options, maxSessions int) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		opts:        opts,
		maxSessions: maxSessions,
		logger:      opts.Logger,
	}
}

// Options returns the options new sessions are opened with
func (m *Manager) Options() Options {
	return m.opts
}

// Create opens a new session and returns its info
func (m *Manager) Create(ctx context.Context, override Overrides) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !m.reserve() {
		return nil, fmt.Errorf("%w (%d)", ErrTooManySessions, m.maxSessions)
	}

	session, err := Open(override.apply(m.opts))
	if err != nil {
		m.release()
		return nil, fmt.Errorf("failed to create terminal session: %w", err)
	}

	m.sessions.Store(session.ID(), session)
	go m.watch(session)

	info := session.Info()
	return &info, nil
}

// watch logs shells that exit on their own; the handle stays until destroyed
func (m *Manager) watch(session *Session) {
	<-session.Done()
	if session.closed.Load() {
		return
	}
	m.logger.Info("Shell exited",
		zap.String("session_id", session.ID()),
		zap.NamedError("exit", session.Err()),
	)
}

// Execute runs a command line against the session behind id
func (m *Manager) Execute(ctx context.Context, id, line string) string {
	session, err := m.Session(id)
	if err != nil {
		return InvalidSessionMessage
	}
	return session.ExecuteContext(ctx, line)
}

// Stream runs a command line against the session behind id and yields output chunks
func (m *Manager) Stream(ctx context.Context, id, line string) (iter.Seq[string], error) {
	session, err := m.Session(id)
	if err != nil {
		return nil, err
	}
	return session.Stream(ctx, line), nil
}

// Session returns the live session behind id
func (m *Manager) Session(id string) (*Session, error) {
	value, ok := m.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return value.(*Session), nil
}

// Get retrieves session info
func (m *Manager) Get(id string) (*SessionInfo, error) {
	session, err := m.Session(id)
	if err != nil {
		return nil, err
	}
	info := session.Info()
	return &info, nil
}

// List returns all sessions ordered by start time
func (m *Manager) List() []SessionInfo {
	sessions := []SessionInfo{}
	m.sessions.Range(func(_, value interface{}) bool {
		sessions = append(sessions, value.(*Session).Info())
		return true
	})

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions
}

// Destroy closes the session behind id and forgets the handle
func (m *Manager) Destroy(id string) error {
	value, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.release()
	return value.(*Session).Close()
}

// CloseAll destroys every session
func (m *Manager) CloseAll() {
	m.sessions.Range(func(key, _ interface{}) bool {
		if err := m.Destroy(key.(string)); err != nil {
			m.logger.Warn("Failed to close terminal session",
				zap.String("session_id", key.(string)),
				zap.Error(err),
			)
		}
		return true
	})
}

// Count returns the number of sessions holding a handle
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

func (m *Manager) reserve() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && m.live >= m.maxSessions {
		return false
	}
	m.live++
	return true
}

func (m *Manager) release() {
	m.mu.Lock()
	m.live--
	m.mu.Unlock()
}
