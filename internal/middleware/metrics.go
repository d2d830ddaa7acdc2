package middleware

import (
	"net/http"
	"strconv"
	"time"

	"hackaigc-api/internal/metrics"
)

// MetricsMiddleware records Prometheus request counters and latency.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		wrapped := NewTracedResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		metrics.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.StatusCode)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
