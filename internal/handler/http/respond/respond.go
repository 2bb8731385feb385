// Package respond writes JSON responses and maps errors to client-safe messages.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"article-panel/internal/observability/logging"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are already sent
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// safeFragments mark error messages that describe bad input and may be shown to clients.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"cannot be",
	"too long",
	"not allowed",
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, f := range safeFragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// SafeError writes an error response. Messages describing bad input are
// returned as-is for 4xx codes; everything else becomes a generic message and
// the sanitized error is logged with the request's logger.
// An *AppError anywhere in the chain takes precedence: its code and user
// message are used.
func SafeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			logError(r, appErr.Code, err)
		}
		JSON(w, appErr.Code, ErrorBody{Error: appErr.UserMsg})
		return
	}

	msg := err.Error()
	if code < 500 && isSafe(msg) {
		JSON(w, code, ErrorBody{Error: msg})
		return
	}

	logError(r, code, err)
	if code >= 500 {
		msg = "internal server error"
	} else {
		msg = strings.ToLower(http.StatusText(code))
	}
	JSON(w, code, ErrorBody{Error: msg})
}

func logError(r *http.Request, code int, err error) {
	logger := slog.Default()
	if r != nil {
		logger = logging.FromContext(r.Context())
	}
	logger.Error("request failed",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
}

// AppError carries a user-facing message and status code alongside the internal error.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

// Error returns the internal message when present.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the internal error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}
