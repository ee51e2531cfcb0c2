// Package client provides the authenticated HTTP transport for the Jira
// Agile REST API: one request per call, JSON in and out, typed errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Jira client operations.
var (
	jiraRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jira_requests_total",
		Help: "Total Jira requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	jiraRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jira_request_duration_seconds",
		Help:    "Jira request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	jiraErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jira_errors_total",
		Help: "Total Jira errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of transport errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassUnexpected represents 1xx/3xx statuses that were not followed.
	ErrorClassUnexpected ErrorClass = "unexpected"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// DefaultTimeout is the fixed per-request timeout of the transport.
const DefaultTimeout = 30 * time.Second

// Client is the shared, long-lived Jira transport. It is configured once
// and read-only afterwards, so it is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the Jira site, e.g. "https://example.atlassian.net".
	BaseURL string

	// Email and APIToken are the basic-auth credentials.
	Email    string
	APIToken string

	// UserAgent header sent on every request.
	UserAgent string

	// Timeout per request (0 means DefaultTimeout).
	Timeout time.Duration
}

// DefaultConfig returns a configuration with the default timeout.
func DefaultConfig(baseURL, email, apiToken string) Config {
	return Config{
		BaseURL:   baseURL,
		Email:     email,
		APIToken:  apiToken,
		UserAgent: "jira-agile-client/0.1.0",
		Timeout:   DefaultTimeout,
	}
}

// New creates a new Jira client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q is not an absolute url", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	tp := jira.BasicAuthTransport{
		Username: cfg.Email,
		Password: cfg.APIToken,
	}
	httpClient := tp.Client()
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "jira-client").Logger(),
	}, nil
}

// AgileURL returns the Agile API base, "{site}/rest/agile/1.0".
func (c *Client) AgileURL() string {
	return c.config.BaseURL + "/rest/agile/1.0"
}

// RestURL returns the REST root, "{site}/rest".
func (c *Client) RestURL() string {
	return c.config.BaseURL + "/rest"
}

// DetailURL returns the platform API base, "{site}/rest/api/3".
func (c *Client) DetailURL() string {
	return c.RestURL() + "/api/3"
}

// GetJSON issues a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	if len(query) > 0 {
		rawURL = rawURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(req, out)
}

// PostJSON encodes body as JSON, issues a POST and decodes the response into
// out. A nil out discards the response body.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// do executes req once. There is no retry: the first failure is returned.
func (c *Client) do(req *http.Request, out any) error {
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		jiraRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Str("query", req.URL.RawQuery).
		Msg("Executing Jira request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		jiraErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		jiraRequestsTotal.WithLabelValues(endpoint, req.Method, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return &TransportError{
			Method:     req.Method,
			URL:        req.URL.String(),
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	jiraRequestsTotal.WithLabelValues(endpoint, req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	if class := classifyStatus(resp.StatusCode); class != "" {
		jiraErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Jira request error")

		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &TransportError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{URL: req.URL.String(), Err: err}
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
