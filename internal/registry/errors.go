package registry

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/stacklok/registry-console/internal/httpclient"
)

// Kind classifies a failed registry operation
type Kind int

const (
	// KindUnknown is any failure that fits no other kind, such as an
	// undecodable response body
	KindUnknown Kind = iota
	// KindValidation is a client-side pre-flight failure; no request was sent
	KindValidation
	// KindConflict means the instance is already registered
	KindConflict
	// KindNotFound means the target instance no longer exists
	KindNotFound
	// KindConnectivity means the request was sent but no response arrived
	KindConnectivity
	// KindServer is any other non-2xx response or an explicit rejection
	KindServer
)

// String returns the kind name used in logs and metric attributes
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindConnectivity:
		return "connectivity"
	case KindServer:
		return "server"
	case KindUnknown:
		return "unknown"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// User-facing messages for the mapped kinds
const (
	MessageConflict     = "Service already exists, do not register it twice"
	MessageNotFound     = "Service does not exist"
	MessageConnectivity = "Network connection failed, please check your network settings"
)

// Error is the single error type returned by Client methods
type Error struct {
	Kind Kind

	// StatusCode is the HTTP status when a response was received
	StatusCode int

	// Message is the structured message sent by the server or, for
	// validation errors, the remediation text
	Message string

	// Err is the underlying cause and is never shown to users
	Err error
}

// Error implements error
func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the message to show for this error. fallback is the
// operation specific text used when nothing more precise is known.
func (e *Error) UserMessage(fallback string) string {
	switch e.Kind {
	case KindValidation:
		return e.Message
	case KindConflict:
		return MessageConflict
	case KindConnectivity:
		return MessageConnectivity
	case KindNotFound:
		if e.Message != "" {
			return e.Message
		}
		return MessageNotFound
	case KindServer, KindUnknown:
		if e.Message != "" {
			return e.Message
		}
	}
	return fallback
}

// NewValidationError creates a validation error carrying a remediation message
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// AsError returns err as *Error, or nil when it is not one
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	e := AsError(err)
	return e != nil && e.Kind == kind
}

// Classify converts a transport error into an *Error. It returns nil for a
// nil error and returns err unchanged when it already is an *Error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if e := AsError(err); e != nil {
		return e
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		e := &Error{
			Kind:       KindServer,
			StatusCode: httpErr.StatusCode,
			Message:    structuredMessage(httpErr.Body),
			Err:        err,
		}
		switch httpErr.StatusCode {
		case http.StatusConflict:
			e.Kind = KindConflict
		case http.StatusNotFound:
			e.Kind = KindNotFound
		}
		return e
	}

	if errors.Is(err, httpclient.ErrNoResponse) {
		return &Error{Kind: KindConnectivity, Err: err}
	}

	return &Error{Kind: KindUnknown, Err: err}
}

// structuredMessage extracts the "message" field of a JSON error body
func structuredMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	return gjson.GetBytes(body, "message").String()
}
