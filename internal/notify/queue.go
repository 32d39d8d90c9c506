// Package notify holds the single transient user-facing notification shown by
// the console and hides it automatically after a fixed delay.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// DefaultDismissAfter is how long a notification stays visible
const DefaultDismissAfter = 2 * time.Second

// Severity is the visual weight of a notification
type Severity string

const (
	// SeverityInfo is used for progress messages
	SeverityInfo Severity = "info"
	// SeveritySuccess is used for completed operations
	SeveritySuccess Severity = "success"
	// SeverityWarning is used for client-side validation failures
	SeverityWarning Severity = "warning"
	// SeverityError is used for remote failures
	SeverityError Severity = "error"
)

// Notification is a snapshot of the queue's displayed message
type Notification struct {
	Message  string
	Severity Severity
	// Sequence increases on every emission
	Sequence uint64
	Visible  bool
}

// Listener receives every notification state change
type Listener func(Notification)

// Queue holds at most one notification. A newer emission always replaces the
// displayed one and restarts the dismiss timer.
type Queue struct {
	clock        clock.WithDelayedExecution
	dismissAfter time.Duration

	mu        sync.Mutex
	current   Notification
	timer     clock.Timer
	listeners map[uint64]Listener
	nextID    uint64
	closed    bool
}

// Option configures a Queue
type Option func(*Queue)

// WithClock sets the clock used to schedule dismissal
func WithClock(c clock.WithDelayedExecution) Option {
	return func(q *Queue) {
		q.clock = c
	}
}

// NewQueue creates an empty queue
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		clock:        clock.RealClock{},
		dismissAfter: DefaultDismissAfter,
		listeners:    make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Emit displays message with the given severity. An empty severity means info.
func (q *Queue) Emit(message string, severity Severity) {
	if severity == "" {
		severity = SeverityInfo
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.current = Notification{
		Message:  message,
		Severity: severity,
		Sequence: q.current.Sequence + 1,
		Visible:  true,
	}
	n := q.current
	prev := q.timer
	q.timer = nil
	listeners := q.listenersLocked()
	q.mu.Unlock()

	slog.Debug("Notification emitted",
		"severity", string(severity),
		"sequence", n.Sequence,
		"message", message)

	// Timers are stopped and armed outside q.mu: a fired timer callback takes q.mu
	if prev != nil {
		prev.Stop()
	}
	timer := q.clock.AfterFunc(q.dismissAfter, func() {
		q.dismiss(n.Sequence)
	})

	q.mu.Lock()
	if q.closed || q.current.Sequence != n.Sequence {
		q.mu.Unlock()
		timer.Stop()
	} else {
		q.timer = timer
		q.mu.Unlock()
	}

	for _, l := range listeners {
		l(n)
	}
}

// Info emits an info notification
func (q *Queue) Info(message string) { q.Emit(message, SeverityInfo) }

// Success emits a success notification
func (q *Queue) Success(message string) { q.Emit(message, SeveritySuccess) }

// Warning emits a warning notification
func (q *Queue) Warning(message string) { q.Emit(message, SeverityWarning) }

// Error emits an error notification
func (q *Queue) Error(message string) { q.Emit(message, SeverityError) }

// Current returns the displayed notification
func (q *Queue) Current() Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Subscribe registers l for state changes and returns a function removing it.
// Listeners are called outside the queue lock and must not block.
func (q *Queue) Subscribe(l Listener) (unsubscribe func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return func() {}
	}
	id := q.nextID
	q.nextID++
	q.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			delete(q.listeners, id)
		})
	}
}

// Close cancels the pending dismissal and drops all listeners. Emissions after
// Close are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	prev := q.timer
	q.timer = nil
	q.listeners = make(map[uint64]Listener)
	q.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
}

// dismiss hides the notification only if nothing newer was emitted since the
// timer for seq was armed
func (q *Queue) dismiss(seq uint64) {
	q.mu.Lock()
	if q.current.Sequence != seq || !q.current.Visible {
		q.mu.Unlock()
		return
	}
	q.current.Visible = false
	q.timer = nil
	n := q.current
	listeners := q.listenersLocked()
	q.mu.Unlock()

	for _, l := range listeners {
		l(n)
	}
}

func (q *Queue) listenersLocked() []Listener {
	out := make([]Listener, 0, len(q.listeners))
	for _, l := range q.listeners {
		out = append(out, l)
	}
	return out
}
