package terminal

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("upper", HandlerFunc(func(args []string) string {
		return strings.ToUpper(strings.Join(args, " "))
	})))

	h, ok := r.Lookup("upper")
	require.True(t, ok)
	assert.Equal(t, "A B", h.Handle([]string{"a", "b"}))

	_, ok = r.Lookup("UPPER")
	assert.False(t, ok, "lookup is case-sensitive")

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistryRejects(t *testing.T) {
	r := NewRegistry()
	noop := fixed("x")

	assert.ErrorIs(t, r.Register("", noop), ErrEmptyCommandName)
	assert.Error(t, r.Register("nil", nil))

	require.NoError(t, r.Register("dup", noop))
	assert.ErrorIs(t, r.Register("dup", noop), ErrDuplicateCommand)

	r.Seal()
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, r.Register("late", noop), ErrRegistrySealed)

	_, ok := r.Lookup("late")
	assert.False(t, ok)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"sys", "dev", "omni", "gh-fix"} {
		require.NoError(t, r.Register(name, fixed(name)))
	}
	assert.Equal(t, []string{"dev", "gh-fix", "omni", "sys"}, r.Names())
}

func TestRegistryConcurrentLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, DefaultMessages()))
	r.Seal()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h, ok := r.Lookup(CommandSys)
				if assert.True(t, ok) {
					assert.Equal(t, DefaultMessages().SystemStatus, h.Handle(nil))
				}
			}
		}()
	}
	wg.Wait()
}
