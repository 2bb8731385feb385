package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"article-panel/internal/handler/http/respond"
	"article-panel/pkg/ratelimit"
)

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*ratelimit.Decision, error)
}

// RateLimit limits requests per client IP on the given paths; other paths
// pass through. When the limiter fails the request is allowed.
func RateLimit(l Limiter, m ratelimit.Metrics, paths ...string) Middleware {
	if m == nil {
		m = ratelimit.NoopMetrics{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(paths) > 0 && !slices.Contains(paths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			start := time.Now()
			d, err := l.Allow(r.Context(), ip)
			m.RecordCheckDuration(time.Since(start))
			if err != nil {
				slog.WarnContext(r.Context(), "rate limit check failed, allowing request",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
			m.RecordDecision(r.URL.Path, d.Allowed)

			if !d.Allowed {
				h.Set("Retry-After", strconv.FormatInt(d.RetryAfterSeconds(), 10))
				slog.InfoContext(r.Context(), "rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
					slog.Int("limit", d.Limit))
				respond.SafeError(w, r, http.StatusTooManyRequests,
					respond.NewAppError(http.StatusTooManyRequests, "rate limit exceeded", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the host part of RemoteAddr. Forwarding headers are not
// trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
