package middlewares

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"listo/logger"
)

// Logging writes one structured line per request.
func Logging(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newStatusRecorder(w)
			entry := logger.WithRequestID(log, GetRequestID(r.Context()))

			entry.Debugf("request started: %s %s", r.Method, r.URL.Path)
			next.ServeHTTP(wrapped, r)

			entry.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			}).Info("request completed")
		})
	}
}
