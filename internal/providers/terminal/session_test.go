package terminal

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/termcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termcore/internal/shared/id"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("no PTY support")
	}
	if _, err := os.Stat(DefaultShell); err != nil {
		t.Skip("no /bin/sh available")
	}
}

func openSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func quiesceOptions() Options {
	opts := DefaultOptions()
	opts.ReadMode = ReadQuiesce
	opts.QuietPeriod = 300 * time.Millisecond
	return opts
}

func TestOpenReturnsReadySession(t *testing.T) {
	requireShell(t)
	s := openSession(t, DefaultOptions())

	assert.True(t, id.IsSessionID(s.ID()))

	info := s.Info()
	assert.True(t, info.Active)
	assert.Greater(t, info.PID, 0)
	assert.Equal(t, DefaultShell, info.Shell)
	assert.Equal(t, ReadSingle, info.ReadMode)
	assert.Equal(t, []string{"dev", "gh-fix", "omni", "sys"}, info.Builtins)
}

func TestOpenUnknownShell(t *testing.T) {
	requireShell(t)

	opts := DefaultOptions()
	opts.Shell = "/definitely/not/a/shell"

	s, err := Open(opts)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrShellNotFound)
}

func TestExecuteBuiltinsAndEmpty(t *testing.T) {
	requireShell(t)
	s := openSession(t, DefaultOptions())

	assert.Equal(t, DefaultMessages().SystemStatus, s.Execute("sys"))
	assert.Equal(t, DefaultMessages().OmniFix403, s.Execute("omni fix 403"))
	assert.Equal(t, "", s.Execute(""))
	assert.Equal(t, "", s.Execute("     "))
}

func TestExecutePassthroughQuiesce(t *testing.T) {
	requireShell(t)
	s := openSession(t, quiesceOptions())

	// The echoed input holds the expression, only the shell's answer holds 42
	out := s.Execute("echo $((6*7))")
	assert.Contains(t, out, "42")
	assert.NotEqual(t, FailureMessage, out)
}

func TestExecutePassthroughSingle(t *testing.T) {
	requireShell(t)
	s := openSession(t, DefaultOptions())

	out := s.Execute("echo hello")
	assert.NotEmpty(t, out)
	assert.NotEqual(t, FailureMessage, out)
	assert.LessOrEqual(t, len(out), DefaultBufferSize)
}

func TestSessionsAreIndependent(t *testing.T) {
	requireShell(t)
	a := openSession(t, quiesceOptions())
	b := openSession(t, quiesceOptions())

	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, a.Info().PID, b.Info().PID)

	a.Execute("MARK=$((100+11))")
	assert.Contains(t, a.Execute("echo $MARK"), "111")
	assert.NotContains(t, b.Execute("echo x${MARK}x"), "x111x")
}

func TestBuiltinsWorkAfterShellExit(t *testing.T) {
	requireShell(t)

	opts := DefaultOptions()
	opts.Args = []string{"-c", "exit 0"}
	opts.ReadTimeout = time.Second
	s := openSession(t, opts)

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not exit")
	}
	assert.NoError(t, s.Err())
	assert.False(t, s.Info().Active)

	assert.Equal(t, DefaultMessages().DevEnvironment, s.Execute("dev"))
	assert.Equal(t, FailureMessage, s.Execute("echo unreachable"))
}

func TestReadTimeoutAndCancel(t *testing.T) {
	requireShell(t)

	opts := DefaultOptions()
	opts.Shell = "sleep"
	opts.Args = []string{"30"}
	s := openSession(t, opts)

	_, err := s.proc.next(context.Background(), 100*time.Millisecond)
	assert.ErrorIs(t, err, errReadTimeout)
	assert.Equal(t, "timeout", readFailureReason(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.proc.next(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "canceled", readFailureReason(err))
}

func TestCloseIsIdempotent(t *testing.T) {
	requireShell(t)

	s, err := Open(DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	select {
	case <-s.Done():
	case <-time.After(DefaultCloseTimeout + time.Second):
		t.Fatal("shell was not reaped")
	}

	assert.Equal(t, InvalidSessionMessage, s.Execute("sys"))
	assert.Equal(t, InvalidSessionMessage, s.Execute("echo hi"))
	assert.False(t, s.Info().Active)
}

func TestNilSession(t *testing.T) {
	var s *Session
	assert.Equal(t, InvalidSessionMessage, s.Execute("sys"))
	assert.NoError(t, s.Close())
}

func TestStream(t *testing.T) {
	requireShell(t)
	s := openSession(t, quiesceOptions())

	var b strings.Builder
	seq := s.Stream(context.Background(), "echo $((20+22))")
	for chunk := range seq {
		b.WriteString(chunk)
	}
	assert.Contains(t, b.String(), "42")

	count := 0
	for range seq {
		count++
	}
	assert.Zero(t, count, "a stream can only be iterated once")

	var builtin []string
	for chunk := range s.Stream(context.Background(), "gh-fix") {
		builtin = append(builtin, chunk)
	}
	assert.Equal(t, []string{DefaultMessages().GitHubFix}, builtin)

	for range s.Stream(context.Background(), "") {
		t.Fatal("empty input yields nothing")
	}
}

func TestStreamEarlyBreak(t *testing.T) {
	requireShell(t)
	s := openSession(t, quiesceOptions())

	for range s.Stream(context.Background(), "seq 1 2000") {
		break
	}

	// The lock is released and the session keeps working
	assert.Equal(t, DefaultMessages().SystemStatus, s.Execute("sys"))
	assert.NotEqual(t, FailureMessage, s.Execute("echo again"))
}

func TestStreamAfterClose(t *testing.T) {
	requireShell(t)

	s, err := Open(DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	var got []string
	for chunk := range s.Stream(context.Background(), "sys") {
		got = append(got, chunk)
	}
	assert.Equal(t, []string{InvalidSessionMessage}, got)
}

func TestSessionMetrics(t *testing.T) {
	requireShell(t)

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	opts := DefaultOptions()
	opts.Metrics = metrics

	s, err := Open(opts)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionsActive))

	s.Execute("sys")
	s.Execute("")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues(monitoring.KindBuiltin)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues(monitoring.KindEmpty)))

	require.NoError(t, s.Close())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.SessionsActive))

	opts.Shell = "/no/such/shell"
	_, err = Open(opts)
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionFailures.WithLabelValues("lookup")))
}

// children counts live and zombie processes whose parent is the test binary.
func children(t *testing.T) (live, zombie int) {
	t.Helper()
	self := strconv.Itoa(os.Getpid())

	entries, err := os.ReadDir("/proc")
	require.NoError(t, err)
	for _, e := range entries {
		if _, err := strconv.Atoi(e.Name()); err != nil {
			continue
		}
		data, err := os.ReadFile("/proc/" + e.Name() + "/stat")
		if err != nil {
			continue // exited while scanning
		}
		// pid (comm) state ppid ...; comm may contain spaces
		stat := string(data)
		fields := strings.Fields(stat[strings.LastIndexByte(stat, ')')+1:])
		if len(fields) < 2 || fields[1] != self {
			continue
		}
		if fields[0] == "Z" {
			zombie++
		} else {
			live++
		}
	}
	return live, zombie
}

func TestNoDescriptorLeak(t *testing.T) {
	requireShell(t)
	if _, err := os.Stat("/proc/self/fd"); err != nil {
		t.Skip("no /proc/self/fd")
	}

	countFDs := func() int {
		entries, err := os.ReadDir("/proc/self/fd")
		require.NoError(t, err)
		return len(entries)
	}

	before := countFDs()
	liveBefore, zombieBefore := children(t)
	for i := 0; i < 20; i++ {
		s, err := Open(DefaultOptions())
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	require.Eventually(t, func() bool {
		return countFDs() <= before+2
	}, 5*time.Second, 50*time.Millisecond)

	require.Eventually(t, func() bool {
		live, zombie := children(t)
		return live <= liveBefore && zombie <= zombieBefore
	}, 5*time.Second, 50*time.Millisecond, "shell processes left behind after Close")
}
