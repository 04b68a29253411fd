// Package middleware provides the HTTP middleware stack for the desktop backend.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//   - RequestID: UUID request ids echoed in X-Request-ID
//   - AccessLog: One structured zap line per request
//   - Recovery: Panic recovery with a JSON error body
//
// Rate Limiting:
//   - Per-IP tracking with lazy cleanup of idle clients
//   - Token bucket algorithm
//   - Configurable RPS and burst capacity
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
