// Package observability provides Prometheus metrics for outbound Datura API
// calls, recorded by an instrumented http.RoundTripper that commands inject
// into the client.
package observability

import "github.com/prometheus/client_golang/prometheus"

// SearchBuckets defines histogram buckets suited for aggregated search
// latencies, ranging from 100ms to 120s.
var SearchBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts outbound API requests by endpoint and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datura_client_requests_total",
			Help: "Outbound Datura API requests",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDuration records outbound request duration in seconds by endpoint.
	// For streaming requests this covers time to response headers, not the
	// lifetime of the stream.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datura_client_request_duration_seconds",
			Help:    "Outbound request duration",
			Buckets: SearchBuckets,
		},
		[]string{"endpoint"},
	)

	// StreamsActive tracks the number of streaming responses currently open.
	StreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "datura_client_streams_active",
			Help: "Open streaming responses",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamsActive,
	)
}
