package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func newTestQueue(t *testing.T) (*Queue, *testingclock.FakeClock) {
	t.Helper()
	fakeClock := testingclock.NewFakeClock(time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC))
	q := NewQueue(WithClock(fakeClock))
	t.Cleanup(q.Close)
	return q, fakeClock
}

func TestQueue_Emit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		severity     Severity
		wantSeverity Severity
	}{
		{name: "empty severity defaults to info", severity: "", wantSeverity: SeverityInfo},
		{name: "success", severity: SeveritySuccess, wantSeverity: SeveritySuccess},
		{name: "warning", severity: SeverityWarning, wantSeverity: SeverityWarning},
		{name: "error", severity: SeverityError, wantSeverity: SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, _ := newTestQueue(t)
			q.Emit("hello", tt.severity)

			got := q.Current()
			assert.Equal(t, "hello", got.Message)
			assert.Equal(t, tt.wantSeverity, got.Severity)
			assert.Equal(t, uint64(1), got.Sequence)
			assert.True(t, got.Visible)
		})
	}
}

func TestQueue_Helpers(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)

	q.Info("a")
	assert.Equal(t, SeverityInfo, q.Current().Severity)
	q.Success("b")
	assert.Equal(t, SeveritySuccess, q.Current().Severity)
	q.Warning("c")
	assert.Equal(t, SeverityWarning, q.Current().Severity)
	q.Error("d")
	assert.Equal(t, SeverityError, q.Current().Severity)
	assert.Equal(t, uint64(4), q.Current().Sequence)
}

func TestQueue_AutoDismiss(t *testing.T) {
	t.Parallel()

	q, fakeClock := newTestQueue(t)
	q.Info("refreshing")

	fakeClock.Step(DefaultDismissAfter - time.Millisecond)
	assert.True(t, q.Current().Visible)

	fakeClock.Step(time.Millisecond)
	got := q.Current()
	assert.False(t, got.Visible)
	assert.Equal(t, "refreshing", got.Message)
}

func TestQueue_OverlappingNotifications(t *testing.T) {
	t.Parallel()

	q, fakeClock := newTestQueue(t)

	q.Info("first")
	fakeClock.Step(1500 * time.Millisecond)
	q.Success("second")

	// The first message's deadline passes; the second must stay visible
	fakeClock.Step(600 * time.Millisecond)
	got := q.Current()
	assert.True(t, got.Visible)
	assert.Equal(t, "second", got.Message)
	assert.Equal(t, uint64(2), got.Sequence)

	fakeClock.Step(1400 * time.Millisecond)
	assert.False(t, q.Current().Visible)
	assert.Equal(t, "second", q.Current().Message)
}

func TestQueue_StaleDismissIgnored(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)
	q.Info("first")
	q.Info("second")

	q.dismiss(1)
	assert.True(t, q.Current().Visible)

	q.dismiss(2)
	assert.False(t, q.Current().Visible)
}

func TestQueue_Subscribe(t *testing.T) {
	t.Parallel()

	q, fakeClock := newTestQueue(t)

	var mu sync.Mutex
	var seen []Notification
	unsubscribe := q.Subscribe(func(n Notification) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, n)
	})

	q.Warning("Port must be between 1 and 65535")
	fakeClock.Step(DefaultDismissAfter)

	mu.Lock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Visible)
	assert.False(t, seen[1].Visible)
	mu.Unlock()

	unsubscribe()
	unsubscribe()
	q.Info("ignored by listener")

	mu.Lock()
	assert.Len(t, seen, 2)
	mu.Unlock()
}

func TestQueue_Close(t *testing.T) {
	t.Parallel()

	q, fakeClock := newTestQueue(t)

	calls := 0
	q.Subscribe(func(Notification) { calls++ })

	q.Info("pending")
	require.True(t, fakeClock.HasWaiters())

	q.Close()
	assert.False(t, fakeClock.HasWaiters())

	q.Error("after close")
	assert.Equal(t, "pending", q.Current().Message)
	assert.Equal(t, 1, calls)

	// Idempotent
	q.Close()
}
