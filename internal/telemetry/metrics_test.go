package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// collect gathers everything recorded so far and indexes metrics by name
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func newManualProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func TestNewSyncMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewSyncMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("creates metrics with SDK provider", func(t *testing.T) {
		t.Parallel()

		mp, _ := newManualProvider(t)
		metrics, err := NewSyncMetrics(mp)
		require.NoError(t, err)
		require.NotNil(t, metrics)
		assert.NotNil(t, metrics.operationDuration)
		assert.NotNil(t, metrics.refreshDuration)
	})
}

func TestSyncMetrics_RecordOperation(t *testing.T) {
	t.Parallel()

	t.Run("no-op when metrics is nil", func(t *testing.T) {
		t.Parallel()

		var metrics *SyncMetrics
		metrics.RecordOperation(context.Background(), "register", time.Second, "success")
		metrics.RecordSyncDuration(context.Background(), time.Second, true)
	})

	t.Run("records operation and outcome attributes", func(t *testing.T) {
		t.Parallel()

		mp, reader := newManualProvider(t)
		metrics, err := NewSyncMetrics(mp)
		require.NoError(t, err)

		ctx := context.Background()
		metrics.RecordOperation(ctx, "register", 150*time.Millisecond, "success")
		metrics.RecordOperation(ctx, "register", 20*time.Millisecond, "conflict")
		metrics.RecordOperation(ctx, "refresh", 40*time.Millisecond, "success")

		got := collect(t, reader)
		m, ok := got["regconsole_operation_duration_seconds"]
		require.True(t, ok)

		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 3)

		for _, dp := range hist.DataPoints {
			assert.Equal(t, uint64(1), dp.Count)
			op, _ := dp.Attributes.Value(attribute.Key("operation"))
			outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
			if op.AsString() == "register" && outcome.AsString() == "conflict" {
				assert.InDelta(t, 0.02, dp.Sum, 0.0001)
			}
		}
	})

	t.Run("records scheduled refresh duration", func(t *testing.T) {
		t.Parallel()

		mp, reader := newManualProvider(t)
		metrics, err := NewSyncMetrics(mp)
		require.NoError(t, err)

		metrics.RecordSyncDuration(context.Background(), 2*time.Second, false)

		got := collect(t, reader)
		m, ok := got["regconsole_scheduled_refresh_duration_seconds"]
		require.True(t, ok)

		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 1)
		success, _ := hist.DataPoints[0].Attributes.Value(attribute.Key("success"))
		assert.False(t, success.AsBool())
		assert.InDelta(t, 2.0, hist.DataPoints[0].Sum, 0.0001)
	})
}

func TestMirrorMetrics_RecordCounts(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewMirrorMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)

		// Should not panic
		metrics.RecordCounts(context.Background(), 1, 1, 1)
	})

	t.Run("records gauges with the latest values", func(t *testing.T) {
		t.Parallel()

		mp, reader := newManualProvider(t)
		metrics, err := NewMirrorMetrics(mp)
		require.NoError(t, err)

		ctx := context.Background()
		metrics.RecordCounts(ctx, 3, 2, 1)
		metrics.RecordCounts(ctx, 5, 3, 2)

		got := collect(t, reader)

		instances, ok := got["regconsole_mirror_instances"].Data.(metricdata.Gauge[int64])
		require.True(t, ok)
		require.Len(t, instances.DataPoints, 1)
		assert.Equal(t, int64(5), instances.DataPoints[0].Value)

		services, ok := got["regconsole_mirror_services"].Data.(metricdata.Gauge[int64])
		require.True(t, ok)
		byState := make(map[string]int64)
		for _, dp := range services.DataPoints {
			state, _ := dp.Attributes.Value(attribute.Key("state"))
			byState[state.AsString()] = dp.Value
		}
		assert.Equal(t, map[string]int64{"total": 3, "online": 2}, byState)
	})
}
