package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/feebook/feebook/pkg/logger"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID assigns each request a trace id, honoring one supplied by the
// caller so gateway callbacks can be correlated across retries.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Trace-ID")
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = logger.With(ctx, "trace_id", id)

		w.Header().Set("X-Trace-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the trace id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
