/*
Package monitoring provides Prometheus metrics for terminal sessions.

# Overview

Collectors are registered on an injectable prometheus.Registerer so that
several collectors can coexist (one per test, for instance). Every
recording method is safe on a nil *Metrics, which lets library users run
sessions without any metrics wiring.

# Metrics

- termcore_sessions_active / termcore_sessions_created_total
- termcore_session_failures_total{stage}
- termcore_commands_total{kind} and termcore_command_duration_seconds{kind}
- termcore_passthrough_failures_total{reason}
- termcore_passthrough_read_bytes
- termcore_http_requests_total / termcore_http_request_duration_seconds
- termcore_ws_connections, termcore_uptime_seconds

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	timer := monitoring.NewTimer(metrics)
	// ... run a command ...
	timer.Stop(monitoring.KindBuiltin)
*/
package monitoring
