// Package metrics provides Prometheus metrics for the onda server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts requests by route pattern, method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onda_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onda_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// DBQueryDuration observes database calls by operation.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onda_db_query_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	// ViewRecomputations counts filter/sort recomputations per list view.
	ViewRecomputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onda_view_recomputations_total",
			Help: "Total number of list view recomputations",
		},
		[]string{"view"},
	)

	// UploadsTotal counts attachment uploads by bucket and outcome.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onda_uploads_total",
			Help: "Total number of attachment uploads",
		},
		[]string{"bucket", "status"},
	)

	// AuthEventsTotal counts login, logout and token events by outcome.
	AuthEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onda_auth_events_total",
			Help: "Total number of authentication events",
		},
		[]string{"event"},
	)
)

// ObserveRequest records one finished HTTP request.
func ObserveRequest(route, method string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveQuery records one database call.
func ObserveQuery(op string, d time.Duration) {
	DBQueryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
