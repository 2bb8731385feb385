// Package observability groups the logging and tracing infrastructure shared by
// the panel and the article service.
//
// Subpackages:
//   - logging: slog loggers with request-id propagation
//   - tracing: OpenTelemetry HTTP middleware and span helpers
//
// Prometheus metrics live next to the code that records them.
package observability
