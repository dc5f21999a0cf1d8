// Package middleware provides the gin middleware stack.
//
//   - CORS: allowed origins from configuration, WebSocket upgrades permitted
//   - RateLimit: per-IP token buckets, idle clients evicted
//   - RequestID: X-Request-ID on every response
//   - Logger: one structured log line per request
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(logger))
//	router.Use(middleware.CORS(middleware.CORSFromOrigins(cfg.Server.CORSOrigins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
