// Package client provides the core cBioPortal HTTP client with typed
// error classification and request normalization.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for API client operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbioportal_requests_total",
		Help: "Total cBioPortal API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cbioportal_request_duration_seconds",
		Help:    "cBioPortal API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 120},
	}, []string{"endpoint"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbioportal_errors_total",
		Help: "Total cBioPortal API errors by kind",
	}, []string{"kind"})
)

const (
	// DefaultBaseURL is the public cBioPortal API root.
	DefaultBaseURL = "https://www.cbioportal.org/api"

	// DefaultTimeout is sized for slow bulk endpoints (multi-study
	// clinical data fetches routinely take minutes).
	DefaultTimeout = 480 * time.Second

	// errorBodySnippetLen bounds the response text logged on failures.
	// The full body is still preserved in the returned APIError.
	errorBodySnippetLen = 500
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root. Must start with http:// or https://.
	BaseURL string

	// Timeout applies per request, covering connection and body read.
	Timeout time.Duration

	// UserAgent identifies this client to the upstream API.
	UserAgent string
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: "cbioportal-mcp/0.1.0",
	}
}

// Client is the cBioPortal API gateway. It owns the long-lived HTTP
// connection pool shared by all pagination and fan-out operations; the
// pool is safe for many simultaneously in-flight requests.
//
// The client must be started before use and closed on shutdown.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	logger    zerolog.Logger

	mu         sync.RWMutex
	httpClient *http.Client
	closed     bool
}

// New creates a new cBioPortal client. The client is not usable until
// Start is called.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("base URL must start with http:// or https:// (got %q)", cfg.BaseURL)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be positive (got %v)", cfg.Timeout)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "cbioportal-mcp/0.1.0"
	}

	logger := log.With().Str("component", "api-client").Logger()

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}, nil
}

// Start allocates the HTTP connection pool. Calling Start on an
// already-started client is a no-op.
func (c *Client) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient != nil {
		c.logger.Info().Msg("Client already started")
		return
	}

	c.httpClient = &http.Client{
		Timeout: c.timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	c.closed = false

	c.logger.Info().
		Str("base_url", c.baseURL).
		Dur("timeout", c.timeout).
		Msg("Client started")
}

// Close releases the connection pool. The client cannot be reused
// after Close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient == nil {
		c.logger.Info().Msg("Client already closed or never started")
		return nil
	}

	c.httpClient.CloseIdleConnections()
	c.httpClient = nil
	c.closed = true
	c.logger.Info().Msg("Client closed")
	return nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs a single API call and returns the raw JSON body.
//
// Method must be GET or POST; anything else is a usage error. A non-2xx
// response yields an *APIError, connection failures a *NetworkError
// (with Timeout set when applicable), and undecodable bodies a
// *ParseError. An empty 2xx body is normalized to [] for collection
// endpoints (path ends in "s" or "fetch") and {} otherwise, matching
// upstream conventions.
func (c *Client) Request(ctx context.Context, method, endpoint string, query url.Values, body any) (json.RawMessage, error) {
	c.mu.RLock()
	httpClient := c.httpClient
	closed := c.closed
	c.mu.RUnlock()

	if httpClient == nil {
		if closed {
			return nil, ErrClosed
		}
		return nil, ErrNotStarted
	}

	method = strings.ToUpper(method)
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	endpoint = strings.TrimPrefix(endpoint, "/")
	requestURL := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Bool("has_body", body != nil).
		Msg("Executing API request")

	start := time.Now()
	resp, err := httpClient.Do(req)
	apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		netErr := &NetworkError{
			Endpoint: endpoint,
			Timeout:  isTimeout(err),
			Err:      err,
		}
		apiErrorsTotal.WithLabelValues(string(netErr.Kind())).Inc()
		apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Str("error_kind", string(netErr.Kind())).
			Msg("HTTP request failed")
		return nil, netErr
	}
	defer resp.Body.Close()

	apiRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Endpoint: endpoint, Timeout: isTimeout(err), Err: err}
		apiErrorsTotal.WithLabelValues(string(netErr.Kind())).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to read response body")
		return nil, netErr
	}

	if resp.StatusCode >= 400 {
		apiErrorsTotal.WithLabelValues(string(ErrorKindAPI)).Inc()
		c.logger.Error().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("body", snippet(string(data))).
			Msg("API request error")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
			Endpoint:   endpoint,
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Msg("Empty response body, normalizing")
		if isCollectionEndpoint(endpoint) {
			return json.RawMessage("[]"), nil
		}
		return json.RawMessage("{}"), nil
	}

	if !json.Valid(data) {
		apiErrorsTotal.WithLabelValues(string(ErrorKindParse)).Inc()
		c.logger.Error().
			Str("endpoint", endpoint).
			Str("body", snippet(string(data))).
			Msg("Invalid JSON in response body")
		return nil, &ParseError{
			Endpoint: endpoint,
			Err:      errors.New("response body is not valid JSON"),
		}
	}

	return json.RawMessage(data), nil
}

// RequestList performs a request and decodes the response as a JSON
// array of records.
func (c *Client) RequestList(ctx context.Context, method, endpoint string, query url.Values, body any) ([]map[string]any, error) {
	raw, err := c.Request(ctx, method, endpoint, query, body)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorKindParse)).Inc()
		return nil, &ParseError{Endpoint: endpoint, Err: err}
	}
	return items, nil
}

// RequestObject performs a request and decodes the response as a single
// JSON object.
func (c *Client) RequestObject(ctx context.Context, method, endpoint string, query url.Values, body any) (map[string]any, error) {
	raw, err := c.Request(ctx, method, endpoint, query, body)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorKindParse)).Inc()
		return nil, &ParseError{Endpoint: endpoint, Err: err}
	}
	return obj, nil
}

// isCollectionEndpoint reports whether an empty body should be
// normalized to an empty array. The upstream API's collection routes
// end in a plural noun or "fetch".
func isCollectionEndpoint(endpoint string) bool {
	return strings.HasSuffix(endpoint, "s") || strings.HasSuffix(endpoint, "fetch")
}

// isTimeout reports whether a transport error was a timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// snippet bounds body text for log output.
func snippet(s string) string {
	if len(s) > errorBodySnippetLen {
		return s[:errorBodySnippetLen] + "..."
	}
	return s
}
