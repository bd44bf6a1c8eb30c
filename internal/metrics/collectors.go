package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpp_http_requests_total",
		Help: "Total HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dpp_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// Graph store
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dpp_graph_query_duration_seconds",
		Help:    "Graph store query latency by operation",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	QueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpp_graph_query_errors_total",
		Help: "Graph store query failures by operation",
	}, []string{"operation"})

	// Risk analysis
	DetectorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpp_risk_detector_failures_total",
		Help: "Risk detector sub-query failures by detector",
	}, []string{"detector"})

	RisksEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpp_risk_items_total",
		Help: "Risk items emitted by type and severity",
	}, []string{"type", "severity"})

	// EPD importer
	EC3Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpp_ec3_requests_total",
		Help: "EC3 API lookups by source (api, cache, fixture)",
	}, []string{"source"})
)

// ObserveQuery records the latency and outcome of one graph store call
func ObserveQuery(operation string, start time.Time, err error) {
	QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		QueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveRequest records one served HTTP request
func ObserveRequest(route, method string, status int, start time.Time) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
