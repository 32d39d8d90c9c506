// Package telemetry provides OpenTelemetry instrumentation for the registry console.
package telemetry

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// HTTPMetricsMeterName is the name used for the registry API client metrics meter
	HTTPMetricsMeterName = "github.com/stacklok/registry-console/http"

	// TracerName is the name used for the registry API client tracer
	TracerName = "github.com/stacklok/registry-console/http"
)

// HTTPMetrics holds the OpenTelemetry instruments for outgoing registry API requests
type HTTPMetrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewHTTPMetrics creates a new HTTPMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewHTTPMetrics(provider metric.MeterProvider) (*HTTPMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(HTTPMetricsMeterName)

	requestDuration, err := meter.Float64Histogram(
		"regconsole_http_client_request_duration_seconds",
		metric.WithDescription("Duration of registry API requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	requestsTotal, err := meter.Int64Counter(
		"regconsole_http_client_requests_total",
		metric.WithDescription("Total number of registry API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"regconsole_http_client_active_requests",
		metric.WithDescription("Number of currently in-flight registry API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestDuration: requestDuration,
		requestsTotal:   requestsTotal,
		activeRequests:  activeRequests,
	}, nil
}

// instrumentedTransport records metrics and a client span for every request
type instrumentedTransport struct {
	base       http.RoundTripper
	metrics    *HTTPMetrics
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// InstrumentTransport wraps base with request metrics and client tracing.
// Either provider may be nil to skip that concern. A nil base uses
// http.DefaultTransport.
func InstrumentTransport(
	base http.RoundTripper, meterProvider metric.MeterProvider, tracerProvider trace.TracerProvider,
) (http.RoundTripper, error) {
	if base == nil {
		base = http.DefaultTransport
	}

	metrics, err := NewHTTPMetrics(meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client metrics: %w", err)
	}

	if metrics == nil && tracerProvider == nil {
		return base, nil
	}

	t := &instrumentedTransport{
		base:       base,
		metrics:    metrics,
		propagator: otel.GetTextMapPropagator(),
	}
	if tracerProvider != nil {
		t.tracer = tracerProvider.Tracer(TracerName)
	}
	return t, nil
}

// RoundTrip implements http.RoundTripper
func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	route := routeTemplate(req.URL.Path)
	start := time.Now()

	var span trace.Span
	if t.tracer != nil {
		ctx, span = t.tracer.Start(ctx, fmt.Sprintf("%s %s", req.Method, route),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.ServerAddress(req.URL.Hostname()),
			),
		)
		defer span.End()

		// The request must not be mutated, so headers go onto a clone
		req = req.Clone(ctx)
		t.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	}

	if t.metrics != nil {
		t.metrics.activeRequests.Add(ctx, 1)
	}

	resp, err := t.base.RoundTrip(req)

	statusCode := "error"
	if err == nil {
		statusCode = strconv.Itoa(resp.StatusCode)
	}

	if t.metrics != nil {
		t.metrics.activeRequests.Add(ctx, -1)

		attrs := metric.WithAttributes(
			attribute.String("method", req.Method),
			attribute.String("route", route),
			attribute.String("status_code", statusCode),
		)
		t.metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		t.metrics.requestsTotal.Add(ctx, 1, attrs)
	}

	if span != nil {
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case resp.StatusCode >= 400:
			span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
			span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		default:
			span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
			span.SetStatus(codes.Ok, "")
		}
	}

	return resp, err
}

// routeTemplate replaces numeric path segments with {id} so that metric
// and span names stay low cardinality.
func routeTemplate(path string) string {
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseUint(s, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
