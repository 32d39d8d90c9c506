package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync operation metrics meter
	SyncMetricsMeterName = "github.com/stacklok/registry-console/sync"

	// MirrorMetricsMeterName is the name used for the mirror metrics meter
	MirrorMetricsMeterName = "github.com/stacklok/registry-console/mirror"
)

// SyncMetrics holds the OpenTelemetry instruments for sync operations
type SyncMetrics struct {
	operationDuration metric.Float64Histogram
	refreshDuration   metric.Float64Histogram
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	operationDuration, err := meter.Float64Histogram(
		"regconsole_operation_duration_seconds",
		metric.WithDescription("Duration of registry operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	refreshDuration, err := meter.Float64Histogram(
		"regconsole_scheduled_refresh_duration_seconds",
		metric.WithDescription("Duration of scheduled mirror refreshes in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		operationDuration: operationDuration,
		refreshDuration:   refreshDuration,
	}, nil
}

// RecordOperation records the duration of a sync operation. outcome is
// "success", "skipped" or the failure kind.
func (m *SyncMetrics) RecordOperation(ctx context.Context, operation string, duration time.Duration, outcome string) {
	if m == nil || m.operationDuration == nil {
		return
	}

	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordSyncDuration records the duration of one scheduler tick
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || m.refreshDuration == nil {
		return
	}

	m.refreshDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Bool("success", success),
	))
}

// MirrorMetrics holds the OpenTelemetry instruments describing the mirror
type MirrorMetrics struct {
	instancesTotal metric.Int64Gauge
	servicesTotal  metric.Int64Gauge
}

// NewMirrorMetrics creates a new MirrorMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewMirrorMetrics(provider metric.MeterProvider) (*MirrorMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(MirrorMetricsMeterName)

	instancesTotal, err := meter.Int64Gauge(
		"regconsole_mirror_instances",
		metric.WithDescription("Number of service instances in the mirror"),
		metric.WithUnit("{instance}"),
	)
	if err != nil {
		return nil, err
	}

	servicesTotal, err := meter.Int64Gauge(
		"regconsole_mirror_services",
		metric.WithDescription("Number of distinct services in the mirror by availability"),
		metric.WithUnit("{service}"),
	)
	if err != nil {
		return nil, err
	}

	return &MirrorMetrics{
		instancesTotal: instancesTotal,
		servicesTotal:  servicesTotal,
	}, nil
}

// RecordCounts records the mirror size and its distinct total and online service counts
func (m *MirrorMetrics) RecordCounts(ctx context.Context, instances, services, online int) {
	if m == nil || m.instancesTotal == nil {
		return
	}

	m.instancesTotal.Record(ctx, int64(instances))
	m.servicesTotal.Record(ctx, int64(services), metric.WithAttributes(attribute.String("state", "total")))
	m.servicesTotal.Record(ctx, int64(online), metric.WithAttributes(attribute.String("state", "online")))
}
