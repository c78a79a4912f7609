// Package shield provides the HTTP middleware stack for the snspick API:
// security headers, body limits, request tracing, per-IP rate limiting,
// and HEAD method handling.
package shield

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
)

type contextKey string

const (
	// LoggerKey is the context key for the per-request structured logger.
	LoggerKey contextKey = "shield_logger"

	// TraceKey is the context key for the request trace ID.
	TraceKey contextKey = "shield_trace"
)

// GetLogger retrieves the per-request logger from the context.
// Returns slog.Default() if no logger was set.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// GetTraceID retrieves the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(TraceKey).(string)
	return id
}

// DefaultStack returns the standard middleware stack, ordered:
// HeadToGet → SecurityHeaders → MaxJSONBody → TraceID → RateLimiter.
// Health checks bypass rate limiting.
func DefaultStack(db *sql.DB) ([]func(http.Handler) http.Handler, *RateLimiter) {
	rl := NewRateLimiter(db, "/healthz")
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		MaxJSONBody(256 * 1024),
		TraceID,
		rl.Middleware,
	}, rl
}
