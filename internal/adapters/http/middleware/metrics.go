package middleware

import (
	"net/http"
	"time"

	"onda/internal/metrics"
)

// Metrics returns middleware that feeds the Prometheus request counter and histogram.
// It must wrap the ServeMux directly: the route label is the matched pattern,
// which the mux writes into the request it is handed. The route is also
// reported to an enclosing Timing.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		reportRoute(r, route)
		metrics.ObserveRequest(route, r.Method, sw.status, time.Since(start))
	})
}
