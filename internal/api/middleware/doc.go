// Package middleware provides the gin middleware stack for the session API.
//
//   - CORS: cross-origin access, WebSocket upgrades included
//   - RateLimit: per-IP token buckets, idle clients are swept
//   - RequestID: X-Request-ID propagation
//   - Logger: one zap line per request
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(log))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
