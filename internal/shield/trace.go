package shield

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/modurecruit/snspick/internal/idgen"
)

var newTraceID = idgen.Prefixed("req_", idgen.NanoID(8))

// TraceID generates a random trace ID for each request and injects it
// into the context, response headers, and a per-request structured logger.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := newTraceID()

		ctx := context.WithValue(r.Context(), TraceKey, traceID)
		w.Header().Set("X-Trace-ID", traceID)

		logger := slog.Default().With(
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		ctx = context.WithValue(ctx, LoggerKey, logger)
		logger.Info("request")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
