package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logger logs one line per request and tags the response with an X-Request-ID.
// Panics in the wrapped handler are logged and turned into a 500.
func Logger(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		reqLog := log.With("request_id", requestID, "method", r.Method, "path", r.URL.Path)

		defer func() {
			if p := recover(); p != nil {
				reqLog.Error("Handler panicked", "panic", p)
				http.Error(rec, "Internal server error", http.StatusInternalServerError)
			}
			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			reqLog.Log(r.Context(), level, "Request handled",
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds())
		}()

		next.ServeHTTP(rec, r)
	})
}
