// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, and readiness probes.
//
// Run blocks until the context is cancelled or the listener fails, then
// drains in-flight requests within the shutdown deadline. Signal handling
// belongs to the composition root (signal.NotifyContext); the server only
// reacts to its context.
//
// Listen errors are wrapped with ErrStart, shutdown errors with ErrShutdown,
// so callers can distinguish them with errors.Is.
package httpserver
