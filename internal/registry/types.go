package registry

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// StatusUp is the only status value treated as online. Any other value is
// passed through untouched and counts as not online.
const StatusUp = "UP"

// DefaultRateLimitErrorMessage is the message shown to callers of a
// rate-limited service when none has been configured.
const DefaultRateLimitErrorMessage = "Service is temporarily busy, please try again later"

// ServiceInstance is a single registered service instance
type ServiceInstance struct {
	// ID is assigned by the registry on creation and is unique in the mirror
	ID int64 `json:"id"`

	// ServiceName groups instances of the same service
	ServiceName    string `json:"serviceName"`
	ServiceVersion string `json:"serviceVersion"`
	IP             string `json:"ip"`
	Port           int    `json:"port"`
	Status         string `json:"status"`

	// RegisterTime never changes after creation
	RegisterTime Timestamp `json:"registerTime"`

	// LastHeartbeat is only updated by heartbeat operations
	LastHeartbeat Timestamp `json:"lastHeartbeat"`

	RateLimitEnabled      bool   `json:"rateLimitEnabled,omitempty"`
	MaxRequestsPerSecond  int    `json:"maxRequestsPerSecond,omitempty"`
	RateLimitErrorMessage string `json:"rateLimitErrorMessage,omitempty"`

	// VirtualDomain is nil when the instance has no domain alias
	VirtualDomain *string `json:"virtualDomain,omitempty"`
}

// IsUp reports whether the instance is online
func (s *ServiceInstance) IsUp() bool {
	return s.Status == StatusUp
}

// Address returns the ip:port pair of the instance
func (s *ServiceInstance) Address() string {
	return fmt.Sprintf("%s:%d", s.IP, s.Port)
}

// Domain returns the virtual domain or an empty string when unset
func (s *ServiceInstance) Domain() string {
	if s.VirtualDomain == nil {
		return ""
	}
	return *s.VirtualDomain
}

// RegisterRequest is the body sent when registering a new instance
type RegisterRequest struct {
	ServiceName    string `json:"serviceName"`
	ServiceVersion string `json:"serviceVersion"`
	IP             string `json:"ip"`
	Port           int    `json:"port"`
}

// RateLimitConfig is the rate limiting configuration of an instance
type RateLimitConfig struct {
	Enabled              bool
	MaxRequestsPerSecond int
	ErrorMessage         string
}

// zonelessLayout is how the registry backend serializes local date-times.
// Fractional seconds are accepted on parse even though the layout omits them.
const zonelessLayout = "2006-01-02T15:04:05"

// Timestamp is a time.Time that also accepts the zone-less date-time format
// produced by the registry backend.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp must be a JSON string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}

	parsed, err := time.ParseInLocation(zonelessLayout, raw, time.Local)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Format(time.RFC3339Nano))), nil
}
