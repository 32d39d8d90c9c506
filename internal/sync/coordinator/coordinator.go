package coordinator

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/stacklok/registry-console/internal/config"
	pkgsync "github.com/stacklok/registry-console/internal/sync"
	"github.com/stacklok/registry-console/internal/telemetry"
)

// State is the scheduler state
type State string

const (
	// StateStopped means no ticker is armed
	StateStopped State = "stopped"
	// StateRunning means a ticker triggers silent refreshes
	StateRunning State = "running"
)

// Coordinator schedules silent refreshes of the mirror
type Coordinator interface {
	// Start arms the ticker and triggers an immediate silent refresh.
	// It reports false when the scheduler was already running.
	Start(ctx context.Context) bool

	// StartDeferred arms the ticker without the immediate refresh, for callers
	// that have just refreshed. It reports false when already running.
	StartDeferred(ctx context.Context) bool

	// Stop cancels the ticker and waits for the loop to exit.
	// It reports false when the scheduler was already stopped.
	Stop() bool

	// State returns the current scheduler state
	State() State

	// Interval returns the period between refreshes
	Interval() time.Duration
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager  pkgsync.Manager
	interval time.Duration
	clock    clock.WithTicker

	// lifecycle serializes Start and Stop, including the wait for the loop
	lifecycle  gosync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
	running    atomic.Bool

	// Metrics
	syncMetrics *telemetry.SyncMetrics
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithSyncMetrics sets the sync metrics for the coordinator
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *defaultCoordinator) {
		c.syncMetrics = metrics
	}
}

// WithClock sets the clock providing the ticker
func WithClock(c clock.WithTicker) Option {
	return func(d *defaultCoordinator) {
		d.clock = c
	}
}

// New creates a stopped coordinator refreshing through manager
func New(manager pkgsync.Manager, cfg *config.RefreshConfig, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		manager:  manager,
		interval: getRefreshInterval(cfg),
		clock:    clock.RealClock{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start implements Coordinator
func (c *defaultCoordinator) Start(ctx context.Context) bool {
	return c.start(ctx, true)
}

// StartDeferred implements Coordinator
func (c *defaultCoordinator) StartDeferred(ctx context.Context) bool {
	return c.start(ctx, false)
}

func (c *defaultCoordinator) start(ctx context.Context, immediate bool) bool {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.cancelFunc != nil {
		slog.Debug("Auto refresh already running")
		return false
	}

	slog.Info("Starting auto refresh", "interval", c.interval, "immediate", immediate)

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ticker := c.clock.NewTicker(c.interval)
	done := make(chan struct{})

	c.cancelFunc = cancel
	c.done = done
	c.running.Store(true)

	go c.run(loopCtx, ticker, done, immediate)
	return true
}

// Stop implements Coordinator
func (c *defaultCoordinator) Stop() bool {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.cancelFunc == nil {
		return false
	}

	slog.Info("Stopping auto refresh")
	c.cancelFunc()
	// Wait for the loop to finish
	<-c.done

	c.cancelFunc = nil
	c.done = nil
	c.running.Store(false)
	return true
}

// State implements Coordinator
func (c *defaultCoordinator) State() State {
	if c.running.Load() {
		return StateRunning
	}
	return StateStopped
}

// Interval implements Coordinator
func (c *defaultCoordinator) Interval() time.Duration {
	return c.interval
}

func (c *defaultCoordinator) run(ctx context.Context, ticker clock.Ticker, done chan struct{}, immediate bool) {
	defer func() {
		ticker.Stop()
		close(done)
		slog.Debug("Auto refresh loop exited")
	}()

	if immediate {
		c.refresh(ctx)
	}

	for {
		select {
		case <-ticker.C():
			// A tick may race with cancellation
			if ctx.Err() != nil {
				return
			}
			c.refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// refresh performs one silent refresh and records its duration
func (c *defaultCoordinator) refresh(ctx context.Context) {
	start := c.clock.Now()
	err := c.manager.Refresh(ctx, true)
	duration := c.clock.Since(start)

	if errors.Is(err, context.Canceled) {
		slog.Debug("Scheduled refresh cancelled", "duration", duration)
		return
	}

	c.syncMetrics.RecordSyncDuration(ctx, duration, err == nil)
	if err == nil {
		slog.Debug("Scheduled refresh completed", "duration", duration)
	}
}
