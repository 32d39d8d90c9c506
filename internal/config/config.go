// Package config provides configuration loading and management for the registry console.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/registry-console/internal/filtering"
	"github.com/stacklok/registry-console/internal/telemetry"
)

const (
	// EnvPrefix is the prefix of environment variables read by regconsole
	EnvPrefix = "REGCONSOLE"

	// DefaultEndpoint is the registry API base URL used when none is configured
	DefaultEndpoint = "http://localhost:8080"

	// DefaultTimeout bounds every registry API request
	DefaultTimeout = 10 * time.Second

	// DefaultMaxAttempts is how many times an idempotent request is tried
	DefaultMaxAttempts = 3

	// DefaultRefreshInterval is the auto-refresh period
	DefaultRefreshInterval = 5 * time.Second
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Registry  RegistryConfig    `yaml:"registry"`
	Refresh   RefreshConfig     `yaml:"refresh"`
	Filter    *FilterConfig     `yaml:"filter,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// RegistryConfig describes how to reach the registry API
type RegistryConfig struct {
	// Endpoint is the base URL of the registry API, without the /api prefix
	// Defaults to "http://localhost:8080" if not specified
	Endpoint string `yaml:"endpoint,omitempty"`

	// Timeout bounds every request (e.g. "10s")
	Timeout string `yaml:"timeout,omitempty"`

	Retry *RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig controls retries of idempotent requests
type RetryConfig struct {
	// MaxAttempts is the total number of tries, 1 disables retries
	MaxAttempts int `yaml:"maxAttempts"`
}

// RefreshConfig controls the auto-refresh scheduler
type RefreshConfig struct {
	// Interval is the period between silent refreshes (e.g. "5s")
	Interval string `yaml:"interval,omitempty"`

	// AutoStart starts the scheduler when the console is mounted
	AutoStart bool `yaml:"autoStart"`
}

// FilterConfig narrows the visible services by name
type FilterConfig struct {
	Names *NameFilterConfig `yaml:"names,omitempty"`
}

// NameFilterConfig defines name-based filtering with glob patterns
type NameFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{}
}

// LoadConfig loads and parses configuration from a YAML file.
// Without WithConfigPath the defaults are returned.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return Default(), nil
	}

	// Read the entire file into memory
	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML content
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Validate the config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetEndpoint returns the registry endpoint, using the default if not specified
func (c *RegistryConfig) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// GetTimeout returns the request timeout, using the default if unset or invalid
func (c *RegistryConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// GetMaxAttempts returns the retry budget for idempotent requests
func (c *RegistryConfig) GetMaxAttempts() int {
	if c.Retry == nil || c.Retry.MaxAttempts == 0 {
		return DefaultMaxAttempts
	}
	return c.Retry.MaxAttempts
}

// GetInterval returns the refresh interval. Unset, unparsable or
// non-positive values fall back to DefaultRefreshInterval.
func (c *RefreshConfig) GetInterval() time.Duration {
	if c.Interval == "" {
		return DefaultRefreshInterval
	}

	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		slog.Warn("Invalid refresh interval, using default",
			"interval", c.Interval,
			"default", DefaultRefreshInterval,
		)
		return DefaultRefreshInterval
	}
	return d
}

// NamePatterns returns the configured include and exclude globs
func (c *Config) NamePatterns() (include, exclude []string) {
	if c.Filter == nil || c.Filter.Names == nil {
		return nil, nil
	}
	return c.Filter.Names.Include, c.Filter.Names.Exclude
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	if err := c.Registry.validate(); err != nil {
		errs = append(errs, fmt.Errorf("registry: %w", err))
	}

	if err := c.Refresh.validate(); err != nil {
		errs = append(errs, fmt.Errorf("refresh: %w", err))
	}

	include, exclude := c.NamePatterns()
	if err := filtering.ValidatePatterns(include); err != nil {
		errs = append(errs, fmt.Errorf("filter.names.include: %w", err))
	}
	if err := filtering.ValidatePatterns(exclude); err != nil {
		errs = append(errs, fmt.Errorf("filter.names.exclude: %w", err))
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func (c *RegistryConfig) validate() error {
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil {
			return fmt.Errorf("endpoint must be a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("endpoint must use http or https, got %q", c.Endpoint)
		}
		if u.Host == "" {
			return fmt.Errorf("endpoint must include a host, got %q", c.Endpoint)
		}
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("timeout must be a valid duration (e.g., '10s'): %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
		}
	}

	if c.Retry != nil && c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.maxAttempts must not be negative, got %d", c.Retry.MaxAttempts)
	}

	return nil
}

// validate only rejects unparsable intervals; a non-positive interval is
// tolerated and replaced by the default at runtime.
func (c *RefreshConfig) validate() error {
	if c.Interval == "" {
		return nil
	}
	if _, err := time.ParseDuration(c.Interval); err != nil {
		return fmt.Errorf("interval must be a valid duration (e.g., '5s', '1m'): %w", err)
	}
	return nil
}
