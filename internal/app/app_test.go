package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/stacklok/registry-console/internal/config"
	"github.com/stacklok/registry-console/internal/filtering"
	"github.com/stacklok/registry-console/internal/httpclient"
	"github.com/stacklok/registry-console/internal/notify"
	"github.com/stacklok/registry-console/internal/registry"
	"github.com/stacklok/registry-console/internal/registry/mocks"
	"github.com/stacklok/registry-console/internal/status"
	pkgsync "github.com/stacklok/registry-console/internal/sync"
	"github.com/stacklok/registry-console/internal/sync/coordinator"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testInstances() []registry.ServiceInstance {
	return []registry.ServiceInstance{
		{ID: 1, ServiceName: "orders", ServiceVersion: "1.0", IP: "10.0.0.1", Port: 8080, Status: registry.StatusUp},
		{ID: 2, ServiceName: "orders-canary", ServiceVersion: "1.1", IP: "10.0.0.2", Port: 8080, Status: registry.StatusUp},
		{ID: 3, ServiceName: "billing", ServiceVersion: "2.0", IP: "10.0.0.3", Port: 9090, Status: "DOWN"},
	}
}

// newTestApp builds an App around a mock client and a fake clock
func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) (*App, *mocks.MockClient, *testingclock.FakeClock) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	fakeClock := testingclock.NewFakeClock(testNow)

	if cfg == nil {
		cfg = config.Default()
	}
	opts = append([]Option{
		WithConfig(cfg),
		WithRegistryClient(client),
		WithClock(fakeClock),
	}, opts...)

	a, err := New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, client, fakeClock
}

func TestBaseConfig(t *testing.T) {
	t.Parallel()

	built, err := baseConfig()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), built.config)
	assert.NotNil(t, built.clock)

	tests := []struct {
		name        string
		opt         Option
		errContains string
	}{
		{name: "nil config", opt: WithConfig(nil), errContains: "config cannot be nil"},
		{
			name:        "invalid config",
			opt:         WithConfig(&config.Config{Registry: config.RegistryConfig{Endpoint: "ftp://x"}}),
			errContains: "invalid configuration",
		},
		{name: "nil client", opt: WithRegistryClient(nil), errContains: "registry client cannot be nil"},
		{name: "nil clock", opt: WithClock(nil), errContains: "clock cannot be nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			built, err := baseConfig(tt.opt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Nil(t, built)
		})
	}
}

func TestApp_MountRefreshesWithNotifications(t *testing.T) {
	t.Parallel()

	a, client, _ := newTestApp(t, nil)
	client.EXPECT().List(gomock.Any()).Return(testInstances(), nil)

	require.NoError(t, a.Mount(context.Background()))

	assert.Len(t, a.Services(), 3)
	stats := a.Statistics()
	assert.Equal(t, 3, stats.TotalServices)
	assert.Equal(t, 2, stats.OnlineServices)
	assert.Equal(t, 3, stats.TotalInstances)

	assert.Equal(t, pkgsync.MessageRefreshed, a.Notification().Message)
	assert.Equal(t, notify.SeveritySuccess, a.Notification().Severity)
	assert.Equal(t, status.SyncPhaseComplete, a.SyncStatus().Phase)
	assert.Equal(t, coordinator.StateStopped, a.SchedulerState())
}

func TestApp_MountFailureStillStartsScheduler(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Refresh: config.RefreshConfig{AutoStart: true}}
	a, client, _ := newTestApp(t, cfg)

	gomock.InOrder(
		client.EXPECT().List(gomock.Any()).Return(nil, &registry.Error{Kind: registry.KindServer, StatusCode: 503}),
		client.EXPECT().List(gomock.Any()).Return(testInstances(), nil).AnyTimes(),
	)

	err := a.Mount(context.Background())
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindServer))
	assert.Equal(t, pkgsync.MessageRefreshFailed, a.Notification().Message)
	assert.Equal(t, coordinator.StateRunning, a.SchedulerState())

	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, coordinator.StateStopped, a.SchedulerState())
}

func TestApp_MountWithAutoStartFetchesOnce(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Refresh: config.RefreshConfig{AutoStart: true, Interval: "5s"}}
	a, client, fakeClock := newTestApp(t, cfg)

	scheduled := make(chan struct{}, 1)
	gomock.InOrder(
		client.EXPECT().List(gomock.Any()).Return(testInstances(), nil),
		client.EXPECT().List(gomock.Any()).DoAndReturn(
			func(context.Context) ([]registry.ServiceInstance, error) {
				scheduled <- struct{}{}
				return testInstances(), nil
			}),
	)

	require.NoError(t, a.Mount(context.Background()))
	assert.Equal(t, coordinator.StateRunning, a.SchedulerState())

	select {
	case <-scheduled:
		t.Fatal("scheduler refreshed right after mount")
	case <-time.After(50 * time.Millisecond):
	}

	fakeClock.Step(5 * time.Second)
	select {
	case <-scheduled:
	case <-time.After(time.Second):
		t.Fatal("expected a scheduled refresh after one interval")
	}
	require.NoError(t, a.Close(context.Background()))
}

func TestApp_CloseDuringScheduledRefresh(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "status.json")
	persistence := status.NewFileStatusPersistence(path)
	cfg := &config.Config{Refresh: config.RefreshConfig{AutoStart: true, Interval: "5s"}}
	a, client, fakeClock := newTestApp(t, cfg, WithStatusPersistence(persistence))

	entered := make(chan struct{})
	gomock.InOrder(
		client.EXPECT().List(gomock.Any()).Return(testInstances(), nil),
		client.EXPECT().List(gomock.Any()).DoAndReturn(
			func(ctx context.Context) ([]registry.ServiceInstance, error) {
				close(entered)
				<-ctx.Done()
				return nil, registry.Classify(fmt.Errorf("failed to execute request: %w: %w", httpclient.ErrNoResponse, ctx.Err()))
			}),
	)

	require.NoError(t, a.Mount(context.Background()))
	fakeClock.Step(5 * time.Second)
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("expected a scheduled refresh")
	}

	require.NoError(t, a.Close(context.Background()))

	assert.Equal(t, status.SyncPhaseComplete, a.SyncStatus().Phase)
	saved, err := persistence.LoadStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseComplete, saved.Phase)
	assert.True(t, saved.Healthy())
	assert.Equal(t, 3, saved.InstanceCount)
}

func TestApp_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Refresh: config.RefreshConfig{AutoStart: true}}
	a, client, _ := newTestApp(t, cfg)
	client.EXPECT().List(gomock.Any()).Return(testInstances(), nil).AnyTimes()

	var notified atomic.Int32
	a.OnNotification(func(notify.Notification) { notified.Add(1) })

	require.NoError(t, a.Mount(context.Background()))
	before := notified.Load()
	assert.Positive(t, before)

	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()))

	assert.Equal(t, coordinator.StateStopped, a.SchedulerState())

	// The queue is closed and listeners are gone
	a.components.Queue.Error("late")
	assert.Equal(t, before, notified.Load())

	// Subscribing after Close registers nothing
	a.OnNotification(func(notify.Notification) { notified.Add(100) })
	a.components.Queue.Info("later")
	assert.Equal(t, before, notified.Load())
}

func TestApp_Filtered(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Filter: &config.FilterConfig{Names: &config.NameFilterConfig{
		Exclude: []string{"*-canary"},
	}}}
	a, client, _ := newTestApp(t, cfg)
	client.EXPECT().List(gomock.Any()).Return(testInstances(), nil)
	require.NoError(t, a.Mount(context.Background()))

	names := func() []string {
		var out []string
		for _, inst := range a.Filtered() {
			out = append(out, inst.ServiceName)
		}
		return out
	}

	assert.Equal(t, []string{"orders", "billing"}, names())

	a.SetSearch("ORD")
	assert.Equal(t, []string{"orders"}, names())

	a.SetSearch("")
	a.SetStatusFilter("DOWN")
	assert.Equal(t, []string{"billing"}, names())

	a.SetStatusFilter(filtering.StatusAll)
	assert.Equal(t, []string{"orders", "billing"}, names())

	// Name patterns never hide instances from the unfiltered view
	assert.Len(t, a.Services(), 3)
}

func TestApp_ToggleAutoRefresh(t *testing.T) {
	t.Parallel()

	a, client, _ := newTestApp(t, &config.Config{Refresh: config.RefreshConfig{Interval: "5s"}})
	client.EXPECT().List(gomock.Any()).Return(testInstances(), nil).AnyTimes()

	assert.Equal(t, coordinator.StateRunning, a.ToggleAutoRefresh(context.Background()))
	assert.Equal(t, coordinator.StateRunning, a.SchedulerState())
	assert.Equal(t, "Auto refresh enabled, refreshing every 5 seconds", a.Notification().Message)
	assert.Equal(t, notify.SeveritySuccess, a.Notification().Severity)

	assert.Equal(t, coordinator.StateStopped, a.ToggleAutoRefresh(context.Background()))
	assert.Equal(t, coordinator.StateStopped, a.SchedulerState())
	assert.Equal(t, MessageAutoRefreshDisabled, a.Notification().Message)
	assert.Equal(t, notify.SeverityInfo, a.Notification().Severity)
}

func TestApp_Confirmer(t *testing.T) {
	t.Parallel()

	var prompts []string
	confirmer := pkgsync.ConfirmFunc(func(_ context.Context, prompt string) bool {
		prompts = append(prompts, prompt)
		return true
	})
	a, client, _ := newTestApp(t, nil, WithConfirmer(confirmer))

	client.EXPECT().List(gomock.Any()).Return(testInstances(), nil)
	client.EXPECT().Deregister(gomock.Any(), int64(3)).Return(nil)
	require.NoError(t, a.Mount(context.Background()))

	inst, ok := a.Service(3)
	require.True(t, ok)
	require.NoError(t, a.SyncManager().Deregister(context.Background(), inst))

	assert.Equal(t, []string{`Are you sure you want to deregister service "billing"?`}, prompts)
	_, ok = a.Service(3)
	assert.False(t, ok)
}

func TestApp_MirrorMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	a, client, _ := newTestApp(t, nil, WithMeterProvider(mp))
	client.EXPECT().List(gomock.Any()).Return(testInstances(), nil)
	require.NoError(t, a.Mount(context.Background()))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var instances int64 = -1
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "regconsole_mirror_instances" {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			require.True(t, ok)
			require.Len(t, gauge.DataPoints, 1)
			instances = gauge.DataPoints[0].Value
		}
	}
	assert.Equal(t, int64(3), instances)
}

func TestApp_StatusPersistence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "status.json")
	persistence := status.NewFileStatusPersistence(path)

	a, client, _ := newTestApp(t, nil, WithStatusPersistence(persistence))
	client.EXPECT().List(gomock.Any()).Return(testInstances(), nil)
	require.NoError(t, a.Mount(context.Background()))

	saved, err := persistence.LoadStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseComplete, saved.Phase)
	assert.Equal(t, 3, saved.InstanceCount)
	require.NotNil(t, saved.LastSyncTime)
	assert.True(t, saved.LastSyncTime.Equal(testNow))
}

func TestNew_HTTPRegistryClient(t *testing.T) {
	t.Parallel()

	var requestIDs atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/services", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get(httpclient.RequestIDHeader) != "" {
			requestIDs.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(testInstances())
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	cfg := &config.Config{Registry: config.RegistryConfig{Endpoint: server.URL, Timeout: "2s"}}
	a, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	require.NoError(t, a.Mount(context.Background()))
	assert.Len(t, a.Services(), 3)
	assert.Equal(t, int32(1), requestIDs.Load())
	assert.Same(t, cfg, a.Config())
	assert.NotNil(t, a.Telemetry().TracerProvider())
}

func TestNew_UnreachableRegistry(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	cfg := &config.Config{Registry: config.RegistryConfig{
		Endpoint: endpoint,
		Retry:    &config.RetryConfig{MaxAttempts: 1},
	}}
	a, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	err = a.Mount(context.Background())
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindConnectivity))
	assert.Equal(t, registry.MessageConnectivity, a.Notification().Message)
	assert.Empty(t, a.Services())
}
