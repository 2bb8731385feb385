// Package tracing provides OpenTelemetry tracing for HTTP servers and internal
// operations.
//
// Example usage:
//
//	handler := tracing.Middleware(mux)
//
//	func (s *Service) Process(ctx context.Context, url string) error {
//	    ctx, span := tracing.Start(ctx, "article.process")
//	    defer span.End()
//	    ...
//	}
package tracing
