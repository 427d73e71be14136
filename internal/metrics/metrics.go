// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Search gateway
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelpins_search_requests_total",
			Help: "Place searches by outcome (short, cache_hit, upstream, error)",
		},
		[]string{"outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelpins_geocoder_request_duration_seconds",
			Help:    "Duration of upstream geocoder calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	GateWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travelpins_geocoder_gate_wait_seconds",
			Help:    "Time a search spent waiting for the upstream rate gate",
			Buckets: []float64{0, 0.05, 0.1, 0.25, 0.5, 0.75, 1, 2, 5},
		},
	)

	// Trip store
	TripMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelpins_trip_mutations_total",
			Help: "Trip writes by operation and result",
		},
		[]string{"operation", "result"},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelpins_http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelpins_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// RecordSearch counts one search outcome.
func RecordSearch(outcome string) {
	SearchRequests.WithLabelValues(outcome).Inc()
}

// RecordUpstream observes one upstream call. status 0 means no response.
func RecordUpstream(status int, d time.Duration) {
	UpstreamDuration.WithLabelValues(strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordGateWait observes time spent in the rate gate.
func RecordGateWait(d time.Duration) {
	GateWait.Observe(d.Seconds())
}

// RecordTripMutation counts one trip write.
func RecordTripMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	TripMutations.WithLabelValues(operation, result).Inc()
}

// RecordHTTP observes one served request.
func RecordHTTP(route, method string, status int, d time.Duration) {
	if status == 0 {
		status = http.StatusOK
	}
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
