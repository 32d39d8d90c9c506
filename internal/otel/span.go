// Package otel provides OpenTelemetry span helpers for the registry console.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for business context used across the application.
// Using shared keys ensures consistent attribute naming in traces.
const (
	AttrServiceID      = attribute.Key("service.id")
	AttrServiceName    = attribute.Key("service.name")
	AttrServiceVersion = attribute.Key("service.version")
	AttrOperation      = attribute.Key("operation")
	AttrResultCount    = attribute.Key("result.count")
	AttrSilent         = attribute.Key("refresh.silent")
	AttrErrorKind      = attribute.Key("error.kind")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
// This provides graceful degradation when tracing is disabled.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records an error on a span and sets the span status to error.
// It safely handles nil spans and nil errors.
// The status description stays generic; error details are kept in the span event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}

// RecordErrorKind is RecordError plus an error.kind attribute
func RecordErrorKind(span trace.Span, err error, kind string) {
	if err == nil || span == nil {
		return
	}
	span.SetAttributes(AttrErrorKind.String(kind))
	RecordError(span, err)
}
