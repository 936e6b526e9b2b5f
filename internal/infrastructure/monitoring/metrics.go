package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command kinds recorded by RecordCommand.
const (
	KindBuiltin     = "builtin"
	KindPassthrough = "passthrough"
	KindEmpty       = "empty"
	KindInvalid     = "invalid"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionFailures *prometheus.CounterVec

	// Command metrics
	CommandsTotal       *prometheus.CounterVec
	CommandDuration     *prometheus.HistogramVec
	PassthroughFailures *prometheus.CounterVec
	PassthroughBytes    prometheus.Histogram

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	ActiveSessions      int64   `json:"active_sessions"`
	TotalCommands       int64   `json:"total_commands"`
	PassthroughFailures int64   `json:"passthrough_failures"`
	TotalRequests       int64   `json:"total_requests"`
	UptimeSeconds       float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector registered on reg.
// Passing nil registers on the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termcore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "termcore_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Session metrics
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "termcore_sessions_active",
				Help: "Number of open terminal sessions",
			},
		),
		SessionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "termcore_sessions_created_total",
				Help: "Total number of terminal sessions opened",
			},
		),
		SessionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termcore_session_failures_total",
				Help: "Total number of failed session creations",
			},
			[]string{"stage"},
		),

		// Command metrics
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termcore_commands_total",
				Help: "Total number of executed command lines",
			},
			[]string{"kind"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "termcore_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: []float64{.0001, .001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		PassthroughFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termcore_passthrough_failures_total",
				Help: "Total number of shell passthrough calls that produced no output",
			},
			[]string{"reason"},
		),
		PassthroughBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "termcore_passthrough_read_bytes",
				Help:    "Bytes returned by shell passthrough calls",
				Buckets: prometheus.ExponentialBuckets(16, 4, 8),
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "termcore_ws_connections",
				Help: "Number of active WebSocket streams",
			},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "termcore_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.mu.Unlock()
}

// SessionOpened records a successfully opened session
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
	m.SessionsActive.Inc()

	m.mu.Lock()
	m.snapshot.ActiveSessions++
	m.mu.Unlock()
}

// SessionClosed records a session teardown
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()

	m.mu.Lock()
	m.snapshot.ActiveSessions--
	m.mu.Unlock()
}

// RecordSessionFailure records a failed session creation at the given stage
func (m *Metrics) RecordSessionFailure(stage string) {
	if m == nil {
		return
	}
	m.SessionFailures.WithLabelValues(stage).Inc()
}

// RecordCommand records one executed command line
func (m *Metrics) RecordCommand(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(kind).Inc()
	m.CommandDuration.WithLabelValues(kind).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalCommands++
	m.mu.Unlock()
}

// RecordPassthroughFailure records a passthrough call that returned the failure text
func (m *Metrics) RecordPassthroughFailure(reason string) {
	if m == nil {
		return
	}
	m.PassthroughFailures.WithLabelValues(reason).Inc()

	m.mu.Lock()
	m.snapshot.PassthroughFailures++
	m.mu.Unlock()
}

// ObservePassthroughBytes records the size of a passthrough result
func (m *Metrics) ObservePassthroughBytes(n int) {
	if m == nil {
		return
	}
	m.PassthroughBytes.Observe(float64(n))
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// Snapshot returns a copy of the current counters
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
