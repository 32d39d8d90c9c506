// Package telemetry provides OpenTelemetry instrumentation for the registry console.
// It supports configurable tracing and metrics with OTLP exporters and an
// optional Prometheus scrape endpoint.
package telemetry

import (
	"errors"
	"fmt"
	"net"
)

const (
	// DefaultServiceName is the default service name for telemetry
	DefaultServiceName = "regconsole"

	// DefaultEndpoint is the default OTLP endpoint for telemetry
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling is the default trace sampling rate (5%)
	DefaultSampling = 0.05

	// DefaultPrometheusAddress is where the scrape endpoint listens by default
	DefaultPrometheusAddress = "127.0.0.1:9464"
)

// Config represents the root telemetry configuration
type Config struct {
	// Enabled controls whether telemetry is enabled globally
	// When false, no telemetry providers are initialized
	Enabled bool `yaml:"enabled"`

	// ServiceName is the name of the service for telemetry identification
	// Defaults to "regconsole" if not specified
	ServiceName string `yaml:"serviceName,omitempty"`

	// ServiceVersion defaults to the binary version if not specified
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the OTLP collector endpoint in "host:port" form
	// Defaults to "localhost:4318" if not specified
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure allows HTTP connections instead of HTTPS
	Insecure bool `yaml:"insecure,omitempty"`

	// Tracing contains tracing-specific configuration
	Tracing *TracingConfig `yaml:"tracing,omitempty"`

	// Metrics contains metrics-specific configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig defines tracing-specific configuration
type TracingConfig struct {
	// Enabled controls whether tracing is enabled
	Enabled bool `yaml:"enabled"`

	// Sampling controls the trace sampling rate (0.0 to 1.0)
	// 0 means DefaultSampling
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig defines metrics-specific configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are pushed over OTLP
	Enabled bool `yaml:"enabled"`

	// Prometheus exposes the same instruments on a scrape endpoint
	Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`
}

// PrometheusConfig defines the Prometheus scrape endpoint
type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`

	// Address is the listen address of the scrape endpoint
	Address string `yaml:"address,omitempty"`
}

// GetServiceName returns the service name, using default if not specified
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the service version, using "unknown" if not specified
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the endpoint, using default if not specified
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// GetSampling returns the sampling ratio; 0 means DefaultSampling
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0.0 {
		return DefaultSampling
	}
	return c.Sampling
}

// PrometheusEnabled reports whether the scrape endpoint is configured
func (c *MetricsConfig) PrometheusEnabled() bool {
	return c != nil && c.Prometheus != nil && c.Prometheus.Enabled
}

// GetAddress returns the listen address, using default if not specified
func (c *PrometheusConfig) GetAddress() string {
	if c.Address == "" {
		return DefaultPrometheusAddress
	}
	return c.Address
}

// Validate validates the telemetry configuration
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error

	if c.Tracing != nil {
		if err := c.Tracing.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tracing: %w", err))
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Validate validates the tracing configuration
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	if c.Sampling < 0 || c.Sampling > 1.0 {
		return fmt.Errorf("sampling must be between 0.0 and 1.0, got %f", c.Sampling)
	}

	return nil
}

// Validate validates the metrics configuration
func (c *MetricsConfig) Validate() error {
	if !c.PrometheusEnabled() {
		return nil
	}

	if _, _, err := net.SplitHostPort(c.Prometheus.GetAddress()); err != nil {
		return fmt.Errorf("prometheus address %q: %w", c.Prometheus.Address, err)
	}

	return nil
}
