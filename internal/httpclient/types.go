package httpclient

import (
	"errors"
	"fmt"
)

// ErrNoResponse marks requests that were sent but produced no HTTP response
// (connection refused, reset, timeout before headers, ...)
var ErrNoResponse = errors.New("no response received")

// HTTPError represents a response with a non-2xx status code
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string

	// Body is the (size limited) response body, kept so callers can look for
	// a structured error message
	Body []byte
}

// Error returns the error message
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string, body []byte) error {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
		Body:       body,
	}
}
