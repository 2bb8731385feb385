// Package http provides the middleware, health and metrics endpoints shared by
// the panel and the article service.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"article-panel/internal/handler/http/respond"
	"article-panel/internal/resilience/circuitbreaker"
)

// Health states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse is the JSON body of /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Checker reports the health of one dependency.
type Checker func(ctx context.Context) CheckStatus

// HealthHandler runs every check and answers 200 unless one is unhealthy, in
// which case it answers 503. Degraded checks do not fail the endpoint.
type HealthHandler struct {
	// DB is optional; when set its reachability is checked as "database".
	DB      *sql.DB
	Version string
	Checks  map[string]Checker
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus, len(h.Checks)+1)
	if h.DB != nil {
		checks["database"] = DatabaseCheck(h.DB)(ctx)
	}
	for name, check := range h.Checks {
		checks[name] = check(ctx)
	}

	status := StatusHealthy
	code := http.StatusOK
	for name, c := range checks {
		if c.Status == StatusUnhealthy {
			status = StatusUnhealthy
			code = http.StatusServiceUnavailable
			slog.WarnContext(ctx, "health check failed",
				slog.String("check", name),
				slog.String("message", c.Message))
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// DatabaseCheck pings db and reports pool statistics.
func DatabaseCheck(db *sql.DB) Checker {
	return func(ctx context.Context) CheckStatus {
		if err := db.PingContext(ctx); err != nil {
			return CheckStatus{Status: StatusUnhealthy, Message: respond.SanitizeError(err)}
		}
		stats := db.Stats()
		return CheckStatus{
			Status: StatusHealthy,
			Details: map[string]any{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
			},
		}
	}
}

// BreakerCheck reports a circuit breaker. An open breaker is degraded, not
// unhealthy: requests that need it fail fast while the rest keep working.
func BreakerCheck(cb *circuitbreaker.CircuitBreaker) Checker {
	return func(context.Context) CheckStatus {
		counts := cb.Counts()
		st := CheckStatus{
			Status: StatusHealthy,
			Details: map[string]any{
				"state":                cb.State().String(),
				"requests":             counts.Requests,
				"consecutive_failures": counts.ConsecutiveFailures,
			},
		}
		if cb.IsOpen() {
			st.Status = StatusDegraded
			st.Message = "circuit open"
		}
		return st
	}
}

// LiveHandler answers liveness probes.
type LiveHandler struct{}

// ServeHTTP always answers 200 "alive".
func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("alive"))
}
