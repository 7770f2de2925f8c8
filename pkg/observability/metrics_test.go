package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry without panicking.
func TestMetricsRegistered(t *testing.T) {
	expected := map[string]bool{
		"datura_client_requests_total":           false,
		"datura_client_request_duration_seconds": false,
		"datura_client_streams_active":           false,
	}

	// Counters and histograms only appear after first observation, so seed
	// them before gathering.
	RequestsTotal.WithLabelValues("/desearch/ai/search", "2xx").Inc()
	RequestDuration.WithLabelValues("/desearch/ai/search").Observe(0.1)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

// TestTransportRecordsRequestCount verifies that the instrumented transport
// increments the request counter with the endpoint and status class labels.
func TestTransportRecordsRequestCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	before := counterValue(t, RequestsTotal, "/desearch/ai/search", "2xx")

	client := &http.Client{Transport: InstrumentTransport(nil)}
	resp, err := client.Get(srv.URL + "/desearch/ai/search")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	after := counterValue(t, RequestsTotal, "/desearch/ai/search", "2xx")
	if after-before != 1 {
		t.Errorf("expected request count to increase by 1, got delta=%f", after-before)
	}
}

// TestTransportRecordsDuration verifies that the transport records a duration
// observation per request.
func TestTransportRecordsDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	before := histogramCount(t, RequestDuration, "/web")

	client := &http.Client{Transport: InstrumentTransport(nil)}
	resp, err := client.Get(srv.URL + "/web")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	after := histogramCount(t, RequestDuration, "/web")
	if after-before != 1 {
		t.Errorf("expected histogram sample count to increase by 1, got delta=%d", after-before)
	}
}

// TestTransportCapturesStatusClass verifies that non-2xx statuses land in the
// right status class label.
func TestTransportCapturesStatusClass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	before := counterValue(t, RequestsTotal, "/desearch/ai/search", "4xx")

	client := &http.Client{Transport: InstrumentTransport(nil)}
	resp, err := client.Get(srv.URL + "/desearch/ai/search")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	after := counterValue(t, RequestsTotal, "/desearch/ai/search", "4xx")
	if after-before != 1 {
		t.Errorf("expected 4xx count to increase by 1, got delta=%f", after-before)
	}
}

// TestTransportRecordsNetworkError verifies that transport-level failures are
// counted under the "error" status label.
func TestTransportRecordsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	before := counterValue(t, RequestsTotal, "/desearch/ai/search", "error")

	client := &http.Client{Transport: InstrumentTransport(nil)}
	if _, err := client.Get(srv.URL + "/desearch/ai/search"); err == nil {
		t.Fatal("expected network error")
	}

	after := counterValue(t, RequestsTotal, "/desearch/ai/search", "error")
	if after-before != 1 {
		t.Errorf("expected error count to increase by 1, got delta=%f", after-before)
	}
}

// TestTransportStreamGauge verifies that the streams gauge increments for an
// open streaming body and decrements on close, once.
func TestTransportStreamGauge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {}\n\n"))
	}))
	defer srv.Close()

	baseline := gaugeValue(t, StreamsActive)

	client := &http.Client{Transport: InstrumentTransport(nil)}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/desearch/ai/search", nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if got := gaugeValue(t, StreamsActive); got != baseline+1 {
		t.Errorf("gauge = %f with open stream, want %f", got, baseline+1)
	}

	resp.Body.Close()
	resp.Body.Close() // second close must not double-decrement

	if got := gaugeValue(t, StreamsActive); got != baseline {
		t.Errorf("gauge = %f after close, want %f", got, baseline)
	}
}

// TestNormalizeEndpoint verifies label cardinality stays bounded for
// parameterized routes.
func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/desearch/ai/search", "/desearch/ai/search"},
		{"/twitter", "/twitter"},
		{"/twitter/urls", "/twitter/urls"},
		{"/twitter/1890269100442625875", "/twitter/{id}"},
		{"/web", "/web"},
	}

	for _, tt := range tests {
		if got := normalizeEndpoint(tt.path); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

// gaugeValue reads the current value of a Gauge.
func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("writing gauge metric: %v", err)
	}
	return m.GetGauge().GetValue()
}
