// Package status tracks the outcome of mirror refreshes so that failures of
// silent refreshes stay visible without raising notifications.
package status

import (
	"context"
	"log/slog"
	"sync"

	"k8s.io/utils/clock"
)

// Tracker holds the current SyncStatus and optionally persists every change
type Tracker struct {
	clock       clock.PassiveClock
	persistence StatusPersistence

	// saveMu orders persisted snapshots the same way as the updates that produced them
	saveMu sync.Mutex

	mu     sync.RWMutex
	status SyncStatus
	// beforeBegin is the status replaced by the latest Begin
	beforeBegin SyncStatus
}

// TrackerOption configures a Tracker
type TrackerOption func(*Tracker)

// WithTrackerClock sets the clock used to stamp attempts
func WithTrackerClock(c clock.PassiveClock) TrackerOption {
	return func(t *Tracker) {
		t.clock = c
	}
}

// WithPersistence saves the status after every change
func WithPersistence(p StatusPersistence) TrackerOption {
	return func(t *Tracker) {
		t.persistence = p
	}
}

// NewTracker creates a tracker with an empty status
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get returns a copy of the current status
func (t *Tracker) Get() SyncStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Begin records the start of a refresh
func (t *Tracker) Begin(ctx context.Context) {
	t.update(ctx, func(s *SyncStatus) {
		now := t.clock.Now()
		t.beforeBegin = *s
		s.Phase = SyncPhaseSyncing
		s.Message = "Refresh in progress"
		s.LastAttempt = &now
		s.AttemptCount++
	})
}

// Complete records a successful refresh that returned instanceCount instances
func (t *Tracker) Complete(ctx context.Context, instanceCount int) {
	t.update(ctx, func(s *SyncStatus) {
		now := t.clock.Now()
		s.Phase = SyncPhaseComplete
		s.Message = "Refresh completed successfully"
		s.LastSyncTime = &now
		s.AttemptCount = 0
		s.InstanceCount = instanceCount
	})
}

// Fail records a failed refresh
func (t *Tracker) Fail(ctx context.Context, message string) {
	t.update(ctx, func(s *SyncStatus) {
		s.Phase = SyncPhaseFailed
		s.Message = message
	})
}

// Cancel drops a refresh that was abandoned before it produced an outcome.
// The status reverts to what it was before Begin unless another refresh
// already replaced it.
func (t *Tracker) Cancel(ctx context.Context) {
	t.update(ctx, func(s *SyncStatus) {
		if s.Phase != SyncPhaseSyncing {
			return
		}
		*s = t.beforeBegin
	})
}

func (t *Tracker) update(ctx context.Context, fn func(*SyncStatus)) {
	t.saveMu.Lock()
	defer t.saveMu.Unlock()

	t.mu.Lock()
	fn(&t.status)
	snapshot := t.status
	t.mu.Unlock()

	if t.persistence == nil {
		return
	}
	if err := t.persistence.SaveStatus(ctx, &snapshot); err != nil {
		slog.Warn("Failed to persist sync status",
			"phase", string(snapshot.Phase),
			"error", err)
	}
}
