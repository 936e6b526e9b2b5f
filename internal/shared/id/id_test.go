package id

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()
	assert.NotEqual(t, gen.Generate().String(), gen.Generate().String())
}

func TestSessionID(t *testing.T) {
	sid := NewSessionID()

	assert.True(t, strings.HasPrefix(sid.String(), SessionPrefix+"_"))
	assert.True(t, IsSessionID(sid.String()))
	assert.False(t, IsSessionID(string(NewRequestID())))
	assert.False(t, IsSessionID("sess_not-a-ulid"))
	assert.False(t, IsSessionID(""))
	assert.True(t, IsRequestID(string(NewRequestID())))
	assert.False(t, IsRequestID(sid.String()))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	sid := NewSessionID()

	ts, err := Timestamp(sid.String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("sess_garbage")
	assert.Error(t, err)
}

func TestDeterministicEntropy(t *testing.T) {
	gen := NewGeneratorWithEntropy(bytes.NewReader(bytes.Repeat([]byte{0x01}, 64)))
	assert.True(t, IsValid(gen.Generate().String()))
}

func TestConcurrentGeneration(t *testing.T) {
	const workers, perWorker = 8, 100

	var (
		mu   sync.Mutex
		seen = make(map[SessionID]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				sid := NewSessionID()
				mu.Lock()
				seen[sid] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
