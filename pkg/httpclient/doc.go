// Package httpclient provides the HTTP client factory used to talk to the
// session pool, with consistent timeout, retry, and logging behavior.
//
// The package creates clients with:
//   - Long request timeouts (remote execution may block on interactive auth)
//   - Retry with exponential backoff and jitter, for GET requests only
//   - Request logging with sanitized URLs
//   - User-Agent header injection and per-request correlation IDs
//   - TLS 1.2 minimum (TLS 1.3 preferred)
//
// # Retry Behavior
//
// Only idempotent methods (GET, HEAD, OPTIONS) are retried. POST requests
// against the pool are never retried: a replayed /run re-executes a command
// and a replayed /login can trigger a second device-code flow.
//
// Retryable conditions:
//   - HTTP 5xx server errors
//   - HTTP 408 (request timeout) and 429 (rate limit)
//   - Transient network errors (connection refused, reset, DNS failures)
//
// # Observability
//
// All requests emit structured logs via log/slog:
//   - Debug level: successful requests (2xx status)
//   - Warn level: failed requests (4xx/5xx status, transport errors)
//   - Fields: method, url (sanitized), status, duration_ms, error
//
// Each outbound request carries an X-Correlation-ID header so pool-side
// logs can be matched to an adapter's tool invocation.
package httpclient
