package observability

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// InstrumentTransport wraps an HTTP transport to record metrics for every
// outbound request.
//
// It captures:
//   - datura_client_requests_total (counter): incremented per request with endpoint and status class labels
//   - datura_client_request_duration_seconds (histogram): time to response headers, by endpoint
//   - datura_client_streams_active (gauge): incremented while a streaming response body is open
//
// Pass the result as the Transport of the http.Client handed to the SDK.
// A nil next defaults to http.DefaultTransport.
func InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &instrumentedTransport{next: next}
}

type instrumentedTransport struct {
	next http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	endpoint := normalizeEndpoint(req.URL.Path)
	isStreaming := req.Header.Get("Accept") == "text/event-stream"

	resp, err := t.next.RoundTrip(req)

	RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		RequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}

	status := strconv.Itoa(resp.StatusCode/100) + "xx"
	RequestsTotal.WithLabelValues(endpoint, status).Inc()

	// Track successful streaming responses until their body is closed.
	if isStreaming && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		StreamsActive.Inc()
		resp.Body = &gaugedBody{ReadCloser: resp.Body}
	}

	return resp, nil
}

// normalizeEndpoint collapses parameterized paths so label cardinality stays
// bounded.
func normalizeEndpoint(path string) string {
	if strings.HasPrefix(path, "/twitter/") && path != "/twitter/urls" {
		return "/twitter/{id}"
	}
	return path
}

// gaugedBody decrements the active-streams gauge when the response body is
// closed. The decrement happens exactly once even if Close is called again.
type gaugedBody struct {
	io.ReadCloser
	once sync.Once
}

// Close implements io.Closer.
func (b *gaugedBody) Close() error {
	b.once.Do(StreamsActive.Dec)
	return b.ReadCloser.Close()
}
