package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/termcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/termcore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/termcore/internal/providers/terminal"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.RateLimit.Enabled = false

	srv, err := New(cfg, logging.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestNewRejectsMissingBuiltinsFile(t *testing.T) {
	cfg := config.Default()
	cfg.Terminal.BuiltinsFile = "/nonexistent/builtins.yaml"

	_, err := New(cfg, logging.NewNop(), prometheus.NewRegistry())
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/sessions", http.StatusOK},
		{"GET", "/services", http.StatusOK},
		{"GET", "/metrics/json", http.StatusOK},
		{"GET", "/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestPrometheusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// One request so the HTTP counters have a sample
	srv.Router().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "termcore_http_requests_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestStreamWebSocket(t *testing.T) {
	if _, err := os.Stat(terminal.DefaultShell); err != nil {
		t.Skip("no /bin/sh available")
	}

	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	info, err := srv.Manager().Create(t.Context(), terminal.Overrides{})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/sessions/" + info.ID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	read := func() map[string]interface{} {
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, "system", read()["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", read()["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "execute", "command": "dev"}))
	out := read()
	assert.Equal(t, "output", out["type"])
	assert.Equal(t, terminal.DefaultMessages().DevEnvironment, out["content"])
	assert.Equal(t, "complete", read()["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))
	assert.Equal(t, "error", read()["type"])
}

func TestStreamRejectsOversizedCommand(t *testing.T) {
	if _, err := os.Stat(terminal.DefaultShell); err != nil {
		t.Skip("no /bin/sh available")
	}

	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	info, err := srv.Manager().Create(t.Context(), terminal.Overrides{})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/sessions/" + info.ID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "system", msg["type"])

	big := strings.Repeat("a", terminal.MaxCommandSize+1)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "execute", "command": big}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "command exceeds maximum size", msg["message"])

	// The connection stays usable after the rejection
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "execute", "command": "sys"}))
	msg = nil
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "output", msg["type"])
	assert.Equal(t, terminal.DefaultMessages().SystemStatus, msg["content"])
}

func TestStreamUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/sessions/sess_missing/stream", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}
