package datura

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the production Datura API endpoint.
	DefaultBaseURL = "https://apis.datura.ai"

	// DefaultTimeout applies to non-streaming requests when Config.Timeout
	// is unset. Aggregated searches can take a while.
	DefaultTimeout = 120 * time.Second

	// Version is the SDK version reported in the User-Agent header.
	Version = "0.1.0"

	authHeader = "Authorization"
)

// Config holds client configuration. All fields except APIKey are optional.
type Config struct {
	// APIKey authenticates requests against the Datura API. Required.
	APIKey string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout for individual non-streaming HTTP requests. Defaults to
	// DefaultTimeout. Streaming requests are governed by their context
	// instead.
	Timeout time.Duration

	// HTTPClient overrides the underlying HTTP client, e.g. to inject an
	// instrumented transport. When set, its Timeout is left untouched.
	HTTPClient *http.Client

	// UserAgent overrides the User-Agent header.
	UserAgent string
}

// Client performs HTTP requests against the Datura API. It holds only
// immutable configuration and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// New creates a Client from the given configuration. It fails with a
// configuration error when the API key is empty.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, NewConfigurationError("APIKey is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "datura-go/" + Version
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
	}, nil
}

// AISearch performs a non-streaming AI search: the service aggregates the
// selected tools, synthesizes a completion, and returns the full payload.
func (c *Client) AISearch(ctx context.Context, req AISearchRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	req.Streaming = false
	return c.postJSON(ctx, "/desearch/ai/search", req)
}

// AISearchStream performs a streaming AI search. It returns a Stream of
// chunks delivered as the service produces them; the caller must drain or
// Close it.
func (c *Client) AISearchStream(ctx context.Context, req AISearchRequest) (*Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	req.Streaming = true
	return c.openStream(ctx, "/desearch/ai/search", req)
}

// WebLinksSearch returns web links relevant to the prompt, gathered from the
// selected tools.
func (c *Client) WebLinksSearch(ctx context.Context, req WebLinksSearchRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	return c.postJSON(ctx, "/desearch/ai/search/links/web", req)
}

// TwitterLinksSearch returns tweet links relevant to the prompt.
func (c *Client) TwitterLinksSearch(ctx context.Context, req TwitterLinksSearchRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	return c.postJSON(ctx, "/desearch/ai/search/links/twitter", req)
}

// BasicTwitterSearch performs a filtered Twitter search without AI
// synthesis. Unset optional filters are omitted from the payload.
func (c *Client) BasicTwitterSearch(ctx context.Context, query TwitterSearchQuery) (*Result, error) {
	if err := query.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	return c.postJSON(ctx, "/twitter", query)
}

// BasicWebSearch performs a plain web search, paged with num and start.
func (c *Client) BasicWebSearch(ctx context.Context, query WebSearchQuery) (*Result, error) {
	if err := query.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	params := url.Values{}
	params.Set("query", query.Query)
	params.Set("num", strconv.Itoa(query.Num))
	params.Set("start", strconv.Itoa(query.Start))

	return c.getJSON(ctx, "/web", params)
}

// TwitterByURLs fetches tweets by their URLs.
func (c *Client) TwitterByURLs(ctx context.Context, urls []string) (*Result, error) {
	if len(urls) == 0 {
		return nil, NewInvalidRequestError("urls", "cannot be blank")
	}

	payload := struct {
		URLs []string `json:"urls"`
	}{URLs: urls}

	return c.postJSON(ctx, "/twitter/urls", payload)
}

// TwitterByID fetches a single tweet by its ID.
func (c *Client) TwitterByID(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, NewInvalidRequestError("id", "cannot be blank")
	}

	return c.getJSON(ctx, "/twitter/"+url.PathEscape(id), nil)
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// postJSON sends a JSON payload and parses the response.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewInvalidRequestError("", "encoding request payload: "+err.Error())
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq)
}

// getJSON sends a GET request with optional query parameters and parses the
// response.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values) (*Result, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewTransportError(err)
	}
	c.setHeaders(httpReq)

	return c.do(httpReq)
}

// do executes a non-streaming request and parses the response body.
func (c *Client) do(httpReq *http.Request) (*Result, error) {
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, mapNetworkError(err)
	}

	return newResult(body)
}

// openStream executes a streaming request and hands the response body to a
// Stream. The HTTP client timeout is not applied because a stream can
// legitimately outlive any fixed timeout; the context governs the request
// lifetime instead.
func (c *Client) openStream(ctx context.Context, path string, payload any) (*Stream, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewInvalidRequestError("", "encoding request payload: "+err.Error())
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	streamClient := &http.Client{
		Transport: c.httpClient.Transport,
	}

	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		return nil, mapHTTPError(httpResp)
	}

	return newStream(httpResp.Body), nil
}

// newRequest builds a request with the standard headers and logs it.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, NewTransportError(err)
	}
	c.setHeaders(httpReq)

	return httpReq, nil
}

// setHeaders applies authentication and identification headers. The API key
// is sent verbatim, without a Bearer prefix.
func (c *Client) setHeaders(httpReq *http.Request) {
	requestID := uuid.NewString()

	httpReq.Header.Set(authHeader, c.apiKey)
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	slog.DebugContext(httpReq.Context(), "datura api request",
		slog.String("method", httpReq.Method),
		slog.String("url", httpReq.URL.String()),
		slog.String("request_id", requestID),
	)
}
