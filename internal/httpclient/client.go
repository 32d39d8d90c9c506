// Package httpclient provides the HTTP transport used to reach the registry API
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 10 * time.Second

	// DefaultMaxAttempts is how many times an idempotent request is tried
	DefaultMaxAttempts = 3

	// DefaultInitialRetryInterval is the first backoff delay between attempts
	DefaultInitialRetryInterval = 200 * time.Millisecond

	// MaxResponseSize is the maximum allowed response size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "registry-console/1.0"

	// RequestIDHeader carries a per-request correlation id
	RequestIDHeader = "X-Request-ID"
)

// Request describes a single call against the registry API
type Request struct {
	Method string
	// Path is joined to the client's base URL
	Path  string
	Query url.Values
	// Body is encoded as JSON when non-nil
	Body any
}

// Client is an interface for HTTP operations
type Client interface {
	// Do performs the request and returns the response body
	Do(ctx context.Context, req Request) ([]byte, error)
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client               *http.Client
	baseURL              *url.URL
	maxAttempts          uint
	initialRetryInterval time.Duration
}

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithMaxAttempts sets how many times a GET is attempted when no response is received.
// Values below 1 are treated as 1.
func WithMaxAttempts(attempts int) Option {
	return func(c *DefaultClient) {
		if attempts < 1 {
			attempts = 1
		}
		c.maxAttempts = uint(attempts)
	}
}

// WithInitialRetryInterval sets the first backoff delay between GET attempts
func WithInitialRetryInterval(d time.Duration) Option {
	return func(c *DefaultClient) {
		c.initialRetryInterval = d
	}
}

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *DefaultClient) {
		c.client = hc
	}
}

// WithTransport sets the round tripper of the underlying *http.Client,
// keeping its timeout
func WithTransport(rt http.RoundTripper) Option {
	return func(c *DefaultClient) {
		c.client.Transport = rt
	}
}

// NewDefaultClient creates a client for the API rooted at baseURL.
// If timeout is 0, uses DefaultTimeout.
func NewDefaultClient(baseURL string, timeout time.Duration, opts ...Option) (Client, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &DefaultClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:              parsed,
		maxAttempts:          DefaultMaxAttempts,
		initialRetryInterval: DefaultInitialRetryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Do performs the request. GET requests are retried with exponential backoff
// while no response is received; everything else is attempted exactly once.
func (c *DefaultClient) Do(ctx context.Context, req Request) ([]byte, error) {
	if req.Method != http.MethodGet || c.maxAttempts <= 1 {
		return c.do(ctx, req)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialRetryInterval

	attempt := 0
	return backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		body, err := c.do(ctx, req)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, ErrNoResponse) {
			return nil, backoff.Permanent(err)
		}
		slog.Debug("Request got no response, retrying",
			"path", req.Path,
			"attempt", attempt,
			"error", err)
		return nil, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxAttempts))
}

func (c *DefaultClient) do(ctx context.Context, req Request) ([]byte, error) {
	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}
	targetURL := target.String()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, targetURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	httpReq.Header.Set("User-Agent", UserAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// Execute request
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w: %w", ErrNoResponse, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Check Content-Length header if available
	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes (%.2f MB)",
			resp.ContentLength, MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	// Use LimitReader to prevent reading more than MaxResponseSize
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1) // +1 to detect if limit exceeded
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response size exceeds maximum allowed size of %d bytes (%.2f MB)",
			MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode, targetURL, resp.Status, data)
	}

	return data, nil
}
