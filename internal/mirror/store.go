// Package mirror keeps the in-memory copy of the registry's service instances
// that the console renders from.
package mirror

import (
	"slices"
	"sync"

	"k8s.io/utils/clock"

	"github.com/stacklok/registry-console/internal/registry"
)

// ChangeListener is called after every mutation with the new statistics
type ChangeListener func(Statistics)

// Store is the mirror of the registry. It is safe for concurrent use; it does
// not order concurrent operations, so mutations apply in completion order and
// a ReplaceAll overwrites anything applied while its request was in flight.
type Store struct {
	clock clock.PassiveClock

	mu        sync.RWMutex
	instances []registry.ServiceInstance
	stats     Statistics
	listeners map[uint64]ChangeListener
	nextID    uint64
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the clock used to stamp statistics
func WithClock(c clock.PassiveClock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:     clock.RealClock{},
		instances: []registry.ServiceInstance{},
		listeners: make(map[uint64]ChangeListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stats = ComputeStatistics(s.instances, s.clock.Now())
	return s
}

// ReplaceAll replaces the whole content, keeping the order of list
func (s *Store) ReplaceAll(list []registry.ServiceInstance) {
	s.mutate(func() bool {
		s.instances = slices.Clone(list)
		if s.instances == nil {
			s.instances = []registry.ServiceInstance{}
		}
		return true
	})
}

// Insert appends instance. The caller guarantees its ID is not already present.
func (s *Store) Insert(instance registry.ServiceInstance) {
	s.mutate(func() bool {
		s.instances = append(s.instances, instance)
		return true
	})
}

// UpdateByID applies patch to the instance with the given ID. It reports
// false and does nothing when no such instance exists.
func (s *Store) UpdateByID(id int64, patch func(*registry.ServiceInstance)) bool {
	found := false
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		patch(&s.instances[i])
		found = true
		return true
	})
	return found
}

// RemoveByID removes the instance with the given ID. It reports false and does
// nothing when no such instance exists.
func (s *Store) RemoveByID(id int64) bool {
	found := false
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.instances = slices.Delete(s.instances, i, i+1)
		found = true
		return true
	})
	return found
}

// List returns a copy of all instances in mirror order
func (s *Store) List() []registry.ServiceInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.instances)
}

// Get returns a copy of the instance with the given ID
func (s *Store) Get(id int64) (registry.ServiceInstance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return registry.ServiceInstance{}, false
	}
	return s.instances[i], true
}

// Len returns the number of instances
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

// InstanceCount returns how many instances share serviceName
func (s *Store) InstanceCount(serviceName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := range s.instances {
		if s.instances[i].ServiceName == serviceName {
			n++
		}
	}
	return n
}

// Statistics returns the statistics computed at the last mutation
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Subscribe registers l to be called after every mutation and returns a
// function removing it
func (s *Store) Subscribe(l ChangeListener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
		})
	}
}

// mutate runs fn under the write lock. When fn reports a change the
// statistics are recomputed and listeners are called after the lock is released.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.stats = ComputeStatistics(s.instances, s.clock.Now())
	stats := s.stats
	listeners := make([]ChangeListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(stats)
	}
}

func (s *Store) indexLocked(id int64) int {
	return slices.IndexFunc(s.instances, func(inst registry.ServiceInstance) bool {
		return inst.ID == id
	})
}
