package http

import (
	"log/slog"
	"net/http"

	"article-panel/pkg/security/csp"
)

// CSP sets a Content-Security-Policy built for a fresh nonce on every
// response and stores the nonce in the request context, where templates pick
// it up with csp.NonceFromContext.
func CSP(policy func(nonce string) *csp.Policy) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce, err := csp.NewNonce()
			if err != nil {
				slog.ErrorContext(r.Context(), "csp nonce", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			p := policy(nonce)
			if value := p.Build(); value != "" {
				w.Header().Set(p.HeaderName(), value)
			}
			next.ServeHTTP(w, r.WithContext(csp.WithNonce(r.Context(), nonce)))
		})
	}
}

// SecurityHeaders sets a fixed policy without a nonce, for JSON endpoints.
func SecurityHeaders(p *csp.Policy) Middleware {
	value := p.Build()
	name := p.HeaderName()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if value != "" {
				h.Set(name, value)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	}
}
