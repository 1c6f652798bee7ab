package middleware

import (
	"net/http"
	"time"

	"civic-engagement/missionhub/internal/logging"
)

// Logging logs each request and its response size at debug level
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.Debug("→ request", "method", r.Method, "url", r.URL.String(), "request_id", RequestIDFromContext(r.Context()))

		lw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(lw, r)

		logging.Debug("← response",
			"status", lw.statusCode,
			"bytes", lw.bytes,
			"duration", time.Since(start).String(),
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}
