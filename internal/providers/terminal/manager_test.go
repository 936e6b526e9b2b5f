package terminal

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/termcore/internal/shared/id"
)

func newManager(t *testing.T, maxSessions int) *Manager {
	t.Helper()
	m := NewManager(DefaultOptions(), maxSessions)
	t.Cleanup(m.CloseAll)
	return m
}

func TestManagerUnknownHandle(t *testing.T) {
	m := newManager(t, 0)
	unknown := string(id.NewSessionID())

	assert.Equal(t, InvalidSessionMessage, m.Execute(context.Background(), unknown, "sys"))
	assert.Equal(t, InvalidSessionMessage, m.Execute(context.Background(), "", "echo hi"))

	_, err := m.Get(unknown)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Stream(context.Background(), unknown, "sys")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, m.Destroy(unknown), ErrSessionNotFound)
	assert.Empty(t, m.List())
}

func TestManagerLifecycle(t *testing.T) {
	requireShell(t)
	m := newManager(t, 0)
	ctx := context.Background()

	info, err := m.Create(ctx, Overrides{})
	require.NoError(t, err)
	assert.True(t, info.Active)
	assert.Equal(t, 1, m.Count())

	assert.Equal(t, DefaultMessages().SystemStatus, m.Execute(ctx, info.ID, "sys"))

	got, err := m.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.PID, got.PID)

	require.NoError(t, m.Destroy(info.ID))
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, InvalidSessionMessage, m.Execute(ctx, info.ID, "sys"))
	assert.ErrorIs(t, m.Destroy(info.ID), ErrSessionNotFound)
}

func TestManagerMaxSessions(t *testing.T) {
	requireShell(t)
	m := newManager(t, 2)
	ctx := context.Background()

	a, err := m.Create(ctx, Overrides{})
	require.NoError(t, err)
	_, err = m.Create(ctx, Overrides{})
	require.NoError(t, err)

	_, err = m.Create(ctx, Overrides{})
	assert.ErrorIs(t, err, ErrTooManySessions)

	require.NoError(t, m.Destroy(a.ID))
	_, err = m.Create(ctx, Overrides{})
	assert.NoError(t, err)
	assert.Equal(t, 2, m.Count())
}

func TestManagerCreateFailureReleasesSlot(t *testing.T) {
	requireShell(t)
	m := newManager(t, 1)
	ctx := context.Background()

	_, err := m.Create(ctx, Overrides{Shell: "/no/such/shell"})
	assert.ErrorIs(t, err, ErrShellNotFound)
	assert.Equal(t, 0, m.Count())

	_, err = m.Create(ctx, Overrides{})
	assert.NoError(t, err)
}

func TestManagerCreateCanceled(t *testing.T) {
	m := newManager(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Create(ctx, Overrides{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.Count())
}

func TestManagerOverrides(t *testing.T) {
	requireShell(t)
	m := newManager(t, 0)
	dir := t.TempDir()

	info, err := m.Create(context.Background(), Overrides{
		WorkingDir: dir,
		Env:        map[string]string{"TERMCORE_MARK": "abc123"},
	})
	require.NoError(t, err)
	assert.Equal(t, dir, info.WorkingDir)

	s, err := m.Session(info.ID)
	require.NoError(t, err)
	s.opts.ReadMode = ReadQuiesce
	s.opts.QuietPeriod = 300 * time.Millisecond

	assert.Contains(t, m.Execute(context.Background(), info.ID, "echo ${TERMCORE_MARK}-$((1+1))"), "abc123-2")
}

func TestManagerListOrdered(t *testing.T) {
	requireShell(t)
	m := newManager(t, 0)

	var ids []string
	for i := 0; i < 3; i++ {
		info, err := m.Create(context.Background(), Overrides{})
		require.NoError(t, err)
		ids = append(ids, info.ID)
	}

	list := m.List()
	require.Len(t, list, 3)
	for i, info := range list {
		assert.Equal(t, ids[i], info.ID)
	}

	m.CloseAll()
	assert.Empty(t, m.List())
	assert.Equal(t, 0, m.Count())
}

func TestManagerConcurrentBuiltins(t *testing.T) {
	requireShell(t)
	m := newManager(t, 0)

	info, err := m.Create(context.Background(), Overrides{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				out := m.Execute(context.Background(), info.ID, "omni sys")
				assert.True(t, strings.HasPrefix(out, "System diagnostics"))
			}
		}()
	}
	wg.Wait()
}
