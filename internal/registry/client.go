package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/stacklok/registry-console/internal/httpclient"
)

const (
	servicesPath  = "/api/services"
	rateLimitPath = "/api/rate-limit"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client is the registry REST API as seen by the console.
// Every error returned by its methods is an *Error.
type Client interface {
	// Register creates an instance and returns the stored record, including the
	// server-assigned ID. A nil record with a nil error means the server
	// accepted the request but returned no body.
	Register(ctx context.Context, req RegisterRequest) (*ServiceInstance, error)

	// List returns every registered instance
	List(ctx context.Context) ([]ServiceInstance, error)

	// Deregister removes the instance with the given ID
	Deregister(ctx context.Context, id int64) error

	// Heartbeat renews the instance's heartbeat
	Heartbeat(ctx context.Context, id int64) error

	// SetRateLimit replaces the instance's rate limit settings
	SetRateLimit(ctx context.Context, id int64, cfg RateLimitConfig) error

	// SetVirtualDomain sets the instance's virtual domain; "" removes it
	SetVirtualDomain(ctx context.Context, id int64, domain string) error
}

// httpClient implements Client on top of the httpclient transport
type httpClient struct {
	transport httpclient.Client
}

var _ Client = (*httpClient)(nil)

// NewClient creates a registry client using the given transport
func NewClient(transport httpclient.Client) Client {
	return &httpClient{transport: transport}
}

// Register implements Client
func (c *httpClient) Register(ctx context.Context, req RegisterRequest) (*ServiceInstance, error) {
	body, err := c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   servicesPath,
		Body:   req,
	})
	if err != nil {
		return nil, Classify(err)
	}

	if isEmptyBody(body) {
		return nil, nil
	}

	var instance ServiceInstance
	if err := json.Unmarshal(body, &instance); err != nil {
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("failed to decode registered service: %w", err)}
	}
	return &instance, nil
}

// List implements Client
func (c *httpClient) List(ctx context.Context) ([]ServiceInstance, error) {
	body, err := c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   servicesPath,
	})
	if err != nil {
		return nil, Classify(err)
	}

	if isEmptyBody(body) {
		return []ServiceInstance{}, nil
	}

	var instances []ServiceInstance
	if err := json.Unmarshal(body, &instances); err != nil {
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("failed to decode service list: %w", err)}
	}
	if instances == nil {
		instances = []ServiceInstance{}
	}
	return instances, nil
}

// Deregister implements Client
func (c *httpClient) Deregister(ctx context.Context, id int64) error {
	_, err := c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   instancePath(id),
	})
	if err != nil {
		return Classify(err)
	}
	return nil
}

// Heartbeat implements Client
func (c *httpClient) Heartbeat(ctx context.Context, id int64) error {
	_, err := c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   instancePath(id) + "/heartbeat",
	})
	if err != nil {
		return Classify(err)
	}
	return nil
}

// SetRateLimit implements Client
func (c *httpClient) SetRateLimit(ctx context.Context, id int64, cfg RateLimitConfig) error {
	query := url.Values{}
	query.Set("enabled", strconv.FormatBool(cfg.Enabled))
	query.Set("maxRequestsPerSecond", strconv.Itoa(cfg.MaxRequestsPerSecond))
	query.Set("errorMessage", cfg.ErrorMessage)

	_, err := c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   rateLimitPath + "/" + strconv.FormatInt(id, 10),
		Query:  query,
	})
	if err != nil {
		return Classify(err)
	}
	return nil
}

// SetVirtualDomain implements Client. The outcome is decided by the "success"
// flag of the response body, not by the HTTP status.
func (c *httpClient) SetVirtualDomain(ctx context.Context, id int64, domain string) error {
	body, err := c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   instancePath(id) + "/virtual-domain",
		Query:  url.Values{"virtualDomain": []string{domain}},
	})
	if err != nil {
		var httpErr *httpclient.HTTPError
		if !errors.As(err, &httpErr) || !gjson.GetBytes(httpErr.Body, "success").Exists() {
			return Classify(err)
		}
		// The server answered with an explicit envelope; judge it like a 2xx body
		body = httpErr.Body
	}

	if !gjson.ValidBytes(body) {
		return &Error{Kind: KindUnknown, Err: fmt.Errorf("unexpected virtual domain response body")}
	}

	result := gjson.ParseBytes(body)
	success := result.Get("success")
	if !success.Exists() {
		return &Error{Kind: KindUnknown, Message: result.Get("message").String(),
			Err: fmt.Errorf("virtual domain response has no success flag")}
	}
	if !success.Bool() {
		return &Error{Kind: KindServer, Message: result.Get("message").String(),
			Err: fmt.Errorf("virtual domain rejected by registry")}
	}
	return nil
}

func instancePath(id int64) string {
	return servicesPath + "/" + strconv.FormatInt(id, 10)
}

func isEmptyBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
