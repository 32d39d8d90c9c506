package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"k8s.io/utils/clock"

	"github.com/stacklok/registry-console/internal/config"
	"github.com/stacklok/registry-console/internal/editor"
	"github.com/stacklok/registry-console/internal/filtering"
	"github.com/stacklok/registry-console/internal/httpclient"
	"github.com/stacklok/registry-console/internal/mirror"
	"github.com/stacklok/registry-console/internal/notify"
	"github.com/stacklok/registry-console/internal/registry"
	"github.com/stacklok/registry-console/internal/status"
	pkgsync "github.com/stacklok/registry-console/internal/sync"
	"github.com/stacklok/registry-console/internal/sync/coordinator"
	"github.com/stacklok/registry-console/internal/telemetry"
)

// Option is a function that configures the console builder
type Option func(*appConfig) error

// appConfig collects the configuration and the injected components of an App
type appConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	client      registry.Client
	clock       clock.WithTickerAndDelayedExecution
	confirmer   pkgsync.Confirmer
	persistence status.StatusPersistence

	// Telemetry components
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func baseConfig(opts ...Option) (*appConfig, error) {
	cfg := &appConfig{
		clock: clock.RealClock{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		cfg.config = config.Default()
	}

	return cfg, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) Option {
	return func(cfg *appConfig) error {
		if c == nil {
			return fmt.Errorf("config cannot be nil")
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg.config = c
		return nil
	}
}

// WithRegistryClient replaces the HTTP registry client
func WithRegistryClient(client registry.Client) Option {
	return func(cfg *appConfig) error {
		if client == nil {
			return fmt.Errorf("registry client cannot be nil")
		}
		cfg.client = client
		return nil
	}
}

// WithClock sets the clock used for timers, tickers and timestamps
func WithClock(c clock.WithTickerAndDelayedExecution) Option {
	return func(cfg *appConfig) error {
		if c == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		cfg.clock = c
		return nil
	}
}

// WithConfirmer sets the deregistration gate
func WithConfirmer(c pkgsync.Confirmer) Option {
	return func(cfg *appConfig) error {
		cfg.confirmer = c
		return nil
	}
}

// WithStatusPersistence saves the sync status after every change
func WithStatusPersistence(p status.StatusPersistence) Option {
	return func(cfg *appConfig) error {
		cfg.persistence = p
		return nil
	}
}

// WithTracerProvider sets the tracer provider instead of building one from the
// telemetry configuration
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *appConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMeterProvider sets the meter provider instead of building one from the
// telemetry configuration
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *appConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// New builds an App. The App is not mounted yet: nothing is fetched and the
// scheduler is stopped.
func New(ctx context.Context, opts ...Option) (*App, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	tel, err := buildTelemetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry: %w", err)
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			_ = tel.Shutdown(ctx)
		}
	}()

	if cfg.client == nil {
		cfg.client, err = buildRegistryClient(cfg, tel)
		if err != nil {
			return nil, fmt.Errorf("failed to build registry client: %w", err)
		}
	}

	components, err := buildSyncComponents(cfg, tel)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	a := &App{
		config:     cfg.config,
		components: components,
		telemetry:  tel,
	}

	if err := a.watchMirrorMetrics(tel); err != nil {
		return nil, fmt.Errorf("failed to build mirror metrics: %w", err)
	}

	cleanupNeeded = false
	slog.Info("Console initialized",
		"endpoint", cfg.config.Registry.GetEndpoint(),
		"refresh_interval", components.Scheduler.Interval(),
		"auto_start", cfg.config.Refresh.AutoStart,
	)
	return a, nil
}

// buildTelemetry wraps injected providers or creates them from the telemetry configuration
func buildTelemetry(ctx context.Context, b *appConfig) (*telemetry.Telemetry, error) {
	if b.tracerProvider == nil && b.meterProvider == nil {
		return telemetry.New(ctx, telemetry.WithTelemetryConfig(b.config.Telemetry))
	}

	tp := b.tracerProvider
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	mp := b.meterProvider
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	return telemetry.NewWithProviders(tp, mp), nil
}

// buildRegistryClient builds the instrumented HTTP client for the configured endpoint
func buildRegistryClient(b *appConfig, tel *telemetry.Telemetry) (registry.Client, error) {
	transport, err := telemetry.InstrumentTransport(nil, tel.MeterProvider(), tel.TracerProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to instrument transport: %w", err)
	}

	regCfg := b.config.Registry
	httpClient, err := httpclient.NewDefaultClient(
		regCfg.GetEndpoint(),
		regCfg.GetTimeout(),
		httpclient.WithMaxAttempts(regCfg.GetMaxAttempts()),
		httpclient.WithTransport(transport),
	)
	if err != nil {
		return nil, err
	}

	slog.Debug("Registry client configured",
		"endpoint", regCfg.GetEndpoint(),
		"timeout", regCfg.GetTimeout(),
		"max_attempts", regCfg.GetMaxAttempts(),
	)
	return registry.NewClient(httpClient), nil
}

// buildSyncComponents builds the mirror, its views and the operations acting on it
func buildSyncComponents(b *appConfig, tel *telemetry.Telemetry) (*AppComponents, error) {
	store := mirror.NewStore(mirror.WithClock(b.clock))

	view := filtering.NewView(store)
	include, exclude := b.config.NamePatterns()
	view.SetNamePatterns(include, exclude)

	queue := notify.NewQueue(notify.WithClock(b.clock))
	ed := editor.New()

	trackerOpts := []status.TrackerOption{status.WithTrackerClock(b.clock)}
	if b.persistence != nil {
		trackerOpts = append(trackerOpts, status.WithPersistence(b.persistence))
	}
	tracker := status.NewTracker(trackerOpts...)

	syncMetrics, err := telemetry.NewSyncMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	managerOpts := []pkgsync.Option{
		pkgsync.WithTracker(tracker),
		pkgsync.WithClock(b.clock),
		pkgsync.WithTracerProvider(tel.TracerProvider()),
		pkgsync.WithSyncMetrics(syncMetrics),
	}
	if b.confirmer != nil {
		managerOpts = append(managerOpts, pkgsync.WithConfirmer(b.confirmer))
	}
	manager := pkgsync.NewDefaultSyncManager(b.client, store, queue, ed, managerOpts...)

	scheduler := coordinator.New(manager, &b.config.Refresh,
		coordinator.WithClock(b.clock),
		coordinator.WithSyncMetrics(syncMetrics),
	)

	return &AppComponents{
		Client:      b.client,
		Store:       store,
		View:        view,
		Queue:       queue,
		Editor:      ed,
		Tracker:     tracker,
		SyncManager: manager,
		Scheduler:   scheduler,
	}, nil
}
