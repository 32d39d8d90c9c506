package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerProviderOption adjusts how console spans are exported
type TracerProviderOption func(*traceSetup)

// traceSetup describes where sync operation and registry request spans go
type traceSetup struct {
	service   string
	version   string
	tracing   *TracingConfig
	collector string
	plaintext bool
}

// WithTracerServiceName names the console in exported spans
func WithTracerServiceName(name string) TracerProviderOption {
	return func(s *traceSetup) {
		s.service = name
	}
}

// WithTracerServiceVersion stamps the console build on exported spans
func WithTracerServiceVersion(version string) TracerProviderOption {
	return func(s *traceSetup) {
		s.version = version
	}
}

// WithTracingConfig enables tracing and sets the sampling ratio
func WithTracingConfig(tc *TracingConfig) TracerProviderOption {
	return func(s *traceSetup) {
		s.tracing = tc
	}
}

// WithTracerEndpoint sets the OTLP/HTTP collector address
func WithTracerEndpoint(endpoint string) TracerProviderOption {
	return func(s *traceSetup) {
		s.collector = endpoint
	}
}

// WithTracerInsecure sends spans to the collector over plain HTTP
func WithTracerInsecure(insecure bool) TracerProviderOption {
	return func(s *traceSetup) {
		s.plaintext = insecure
	}
}

// NewTracerProvider returns the provider for sync operation spans and the
// registry request spans started by InstrumentTransport. Unless tracing is
// enabled it is a no-op provider; otherwise spans are batched to the OTLP
// collector and the caller must Shutdown the provider to flush them.
func NewTracerProvider(ctx context.Context, opts ...TracerProviderOption) (trace.TracerProvider, error) {
	setup := &traceSetup{
		service:   DefaultServiceName,
		version:   "unknown",
		collector: DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(setup)
	}

	if !setup.enabled() {
		slog.Info("Tracing disabled, console spans are dropped")
		return noop.NewTracerProvider(), nil
	}

	res, err := newResource(ctx, setup.service, setup.version)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx, setup.exporterOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP span exporter for %s: %w", setup.collector, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(setup.sampler()),
	)
	installGlobalTracing(tp)

	if setup.plaintext {
		slog.Warn("Console spans are sent to the collector over unencrypted HTTP")
	}
	slog.Info("Console tracing enabled",
		"collector", setup.collector,
		"sampling_ratio", setup.tracing.GetSampling(),
		"insecure", setup.plaintext,
	)

	return tp, nil
}

func (s *traceSetup) enabled() bool {
	return s.tracing != nil && s.tracing.Enabled
}

// sampler follows the parent decision, so a registry request span is kept
// exactly when the sync operation around it is
func (s *traceSetup) sampler() sdktrace.Sampler {
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.tracing.GetSampling()))
}

func (s *traceSetup) exporterOptions() []otlptracehttp.Option {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(s.collector)}
	if s.plaintext {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// installGlobalTracing makes tp the global provider and propagates W3C trace
// context on outgoing registry requests
func installGlobalTracing(tp trace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}
