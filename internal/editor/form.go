package editor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stacklok/registry-console/internal/registry"
)

// Validation messages shown when a register form is rejected
const (
	MessageIncompleteForm = "Please fill in complete service information"
	MessageInvalidPort    = "Please enter a valid port number (1-65535)"
	MessageInvalidIP      = "Please enter a valid IP address format"
)

// ipv4Pattern matches dotted-quad IPv4 without leading zeros
var ipv4Pattern = regexp.MustCompile(`^((25[0-5]|(2[0-4]|1\d|[1-9]|)\d)\.){3}(25[0-5]|(2[0-4]|1\d|[1-9]|)\d)$`)

// RegisterForm is the raw user input for registering an instance
type RegisterForm struct {
	ServiceName    string
	ServiceVersion string
	IP             string
	Port           string
}

// Validate trims the form and converts it into a register request. A
// rejected form yields a validation *registry.Error carrying the remediation
// message.
func (f RegisterForm) Validate() (registry.RegisterRequest, error) {
	name := strings.TrimSpace(f.ServiceName)
	version := strings.TrimSpace(f.ServiceVersion)
	ip := strings.TrimSpace(f.IP)
	rawPort := strings.TrimSpace(f.Port)

	if name == "" || version == "" || ip == "" || rawPort == "" {
		return registry.RegisterRequest{}, registry.NewValidationError(MessageIncompleteForm)
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil || port < 1 || port > 65535 {
		return registry.RegisterRequest{}, registry.NewValidationError(MessageInvalidPort)
	}

	if !ipv4Pattern.MatchString(ip) {
		return registry.RegisterRequest{}, registry.NewValidationError(MessageInvalidIP)
	}

	return registry.RegisterRequest{
		ServiceName:    name,
		ServiceVersion: version,
		IP:             ip,
		Port:           port,
	}, nil
}
