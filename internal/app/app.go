// Package app owns the state of the registry console and its lifecycle.
//
// An App is built with New, mounted once with Mount and released with Close.
// Presentation layers read it through the view methods and change it through
// the intent methods; registry operations run through SyncManager.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stacklok/registry-console/internal/config"
	"github.com/stacklok/registry-console/internal/editor"
	"github.com/stacklok/registry-console/internal/mirror"
	"github.com/stacklok/registry-console/internal/notify"
	"github.com/stacklok/registry-console/internal/registry"
	"github.com/stacklok/registry-console/internal/status"
	pkgsync "github.com/stacklok/registry-console/internal/sync"
	"github.com/stacklok/registry-console/internal/sync/coordinator"
	"github.com/stacklok/registry-console/internal/telemetry"
)

// Auto-refresh toggle notifications
const (
	MessageAutoRefreshDisabled = "Auto refresh disabled"
	MessageAutoRefreshEnabled  = "Auto refresh enabled, refreshing every %g seconds"
)

// App is the single owner of the console state
type App struct {
	config     *config.Config
	components *AppComponents
	telemetry  *telemetry.Telemetry

	mu           sync.Mutex
	unsubscribes []func()
	closed       bool
}

// Mount performs the initial refresh and starts the scheduler when
// refresh.autoStart is set. The scheduler starts even if the refresh failed;
// the failure has already been notified and is returned. Its first silent
// refresh comes one interval later.
func (a *App) Mount(ctx context.Context) error {
	err := a.components.SyncManager.Refresh(ctx, false)
	if a.config.Refresh.AutoStart {
		a.components.Scheduler.StartDeferred(ctx)
	}
	return err
}

// Close stops the scheduler, removes every listener, closes the notification
// queue and shuts telemetry down. Calls after the first are no-ops.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	unsubscribes := a.unsubscribes
	a.unsubscribes = nil
	a.mu.Unlock()

	a.components.Scheduler.Stop()
	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
	a.components.Queue.Close()

	if err := a.telemetry.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown telemetry: %w", err)
	}
	slog.Debug("Console closed")
	return nil
}

// OnMirrorChange calls l after every mirror mutation until Close
func (a *App) OnMirrorChange(l mirror.ChangeListener) {
	a.track(a.components.Store.Subscribe(l))
}

// OnNotification calls l on every notification change until Close
func (a *App) OnNotification(l notify.Listener) {
	a.track(a.components.Queue.Subscribe(l))
}

func (a *App) track(unsubscribe func()) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		unsubscribe()
		return
	}
	a.unsubscribes = append(a.unsubscribes, unsubscribe)
	a.mu.Unlock()
}

// Services returns every mirrored instance in registry order
func (a *App) Services() []registry.ServiceInstance {
	return a.components.Store.List()
}

// Filtered returns the instances matching the current search, status filter
// and configured name patterns
func (a *App) Filtered() []registry.ServiceInstance {
	return a.components.View.Services()
}

// Service returns the mirrored instance with the given ID
func (a *App) Service(id int64) (registry.ServiceInstance, bool) {
	return a.components.Store.Get(id)
}

// Statistics returns the statistics of the mirror
func (a *App) Statistics() mirror.Statistics {
	return a.components.Store.Statistics()
}

// Notification returns the current notification
func (a *App) Notification() notify.Notification {
	return a.components.Queue.Current()
}

// SchedulerState returns the auto-refresh state
func (a *App) SchedulerState() coordinator.State {
	return a.components.Scheduler.State()
}

// SyncStatus returns the outcome of the last refresh
func (a *App) SyncStatus() status.SyncStatus {
	return a.components.Tracker.Get()
}

// Editor returns the editing surfaces
func (a *App) Editor() *editor.Editor {
	return a.components.Editor
}

// SyncManager returns the registry operations
func (a *App) SyncManager() pkgsync.Manager {
	return a.components.SyncManager
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Telemetry returns the telemetry providers
func (a *App) Telemetry() *telemetry.Telemetry {
	return a.telemetry
}

// SetSearch sets the service name search text
func (a *App) SetSearch(query string) {
	a.components.View.SetQuery(query)
}

// SetStatusFilter sets the status filter; "all" or "" shows every status
func (a *App) SetStatusFilter(st string) {
	a.components.View.SetStatus(st)
}

// ToggleAutoRefresh stops a running scheduler or starts a stopped one and
// notifies the new state. It returns the state after the toggle.
func (a *App) ToggleAutoRefresh(ctx context.Context) coordinator.State {
	scheduler := a.components.Scheduler
	if scheduler.Stop() {
		a.components.Queue.Info(MessageAutoRefreshDisabled)
		return coordinator.StateStopped
	}

	scheduler.Start(ctx)
	a.components.Queue.Success(fmt.Sprintf(MessageAutoRefreshEnabled, scheduler.Interval().Seconds()))
	return coordinator.StateRunning
}

// watchMirrorMetrics publishes the mirror counts on every change
func (a *App) watchMirrorMetrics(tel *telemetry.Telemetry) error {
	metrics, err := telemetry.NewMirrorMetrics(tel.MeterProvider())
	if err != nil {
		return err
	}
	if metrics == nil {
		return nil
	}

	a.OnMirrorChange(func(stats mirror.Statistics) {
		metrics.RecordCounts(context.Background(), stats.TotalInstances, stats.TotalServices, stats.OnlineServices)
	})
	return nil
}
