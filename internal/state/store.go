// Package state keeps the latest observed status of each managed service and
// fans out changes to subscribers, so a host shell can follow lifecycle
// transitions without polling.
package state

import (
	"sync"
	"time"

	"devstack/internal/service"

	"github.com/google/uuid"
)

// subscriptionBuffer is the per-subscriber channel capacity. Events beyond it
// are dropped and counted.
const subscriptionBuffer = 64

// Snapshot is a service's state at a point in time.
type Snapshot struct {
	Service          service.Type
	Name             string
	Status           service.Status
	InstalledVersion string
	// Operation that produced this snapshot: check, start, stop, verify, version.
	Operation     string
	Error         string
	UpdatedAt     time.Time
	CorrelationID string
}

// Update is the input to Store.Set.
type Update struct {
	Service          service.Type
	Name             string
	Status           service.Status
	InstalledVersion string
	Operation        string
	Err              error
	// CorrelationID ties snapshots from one orchestrated call together.
	// Generated when empty.
	CorrelationID string
}

// ChangeEvent is delivered to subscribers when a service's status kind or
// details change.
type ChangeEvent struct {
	Service  service.Type
	Old      service.Status
	New      service.Status
	Snapshot Snapshot
}

// Subscription receives ChangeEvents for one service, or for all when
// Service is empty.
type Subscription struct {
	ID      string
	Service service.Type
	Events  chan ChangeEvent

	mu     sync.Mutex
	closed bool
}

// Close closes the event channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.Events)
		s.closed = true
	}
}

// IsClosed reports whether Close has been called.
func (s *Subscription) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Metrics describes store activity.
type Metrics struct {
	Services            int
	ActiveSubscriptions int
	StateChanges        int64
	EventsDelivered     int64
	DroppedEvents       int64
	LastStateChange     time.Time
}

// Store holds the latest Snapshot per service.
type Store struct {
	mu            sync.RWMutex
	states        map[service.Type]Snapshot
	subscriptions map[string]*Subscription
	metrics       Metrics
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		states:        make(map[service.Type]Snapshot),
		subscriptions: make(map[string]*Subscription),
	}
}

// NewCorrelationID returns a fresh identifier for grouping related updates.
func NewCorrelationID() string {
	return uuid.New().String()
}

// Get returns the latest snapshot of svc.
func (s *Store) Get(svc service.Type) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.states[svc]
	return snap, ok
}

// All returns a copy of every snapshot.
func (s *Store) All() map[service.Type]Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[service.Type]Snapshot, len(s.states))
	for k, v := range s.states {
		out[k] = v
	}
	return out
}

// Set records an update and returns true when the status changed. Only
// changes are published to subscribers.
func (s *Store) Set(u Update) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.CorrelationID == "" {
		u.CorrelationID = NewCorrelationID()
	}
	old, existed := s.states[u.Service]

	snap := Snapshot{
		Service:          u.Service,
		Name:             u.Name,
		Status:           u.Status,
		InstalledVersion: u.InstalledVersion,
		Operation:        u.Operation,
		UpdatedAt:        time.Now(),
		CorrelationID:    u.CorrelationID,
	}
	if snap.InstalledVersion == "" && existed {
		snap.InstalledVersion = old.InstalledVersion
	}
	if u.Err != nil {
		snap.Error = u.Err.Error()
	}
	s.states[u.Service] = snap

	changed := !existed || old.Status != u.Status
	if !existed {
		s.metrics.Services++
	}
	if changed {
		s.metrics.StateChanges++
		s.metrics.LastStateChange = snap.UpdatedAt
		s.notify(ChangeEvent{Service: u.Service, Old: old.Status, New: u.Status, Snapshot: snap})
	}
	return changed
}

// Subscribe registers for changes of svc; an empty svc subscribes to all.
func (s *Store) Subscribe(svc service.Type) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{
		ID:      uuid.New().String(),
		Service: svc,
		Events:  make(chan ChangeEvent, subscriptionBuffer),
	}
	s.subscriptions[sub.ID] = sub
	s.metrics.ActiveSubscriptions++
	return sub
}

// Unsubscribe removes and closes sub.
func (s *Store) Unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[sub.ID]; ok {
		sub.Close()
		delete(s.subscriptions, sub.ID)
		s.metrics.ActiveSubscriptions--
	}
}

// Metrics returns a copy of the store metrics.
func (s *Store) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// notify must be called with s.mu held.
func (s *Store) notify(ev ChangeEvent) {
	for id, sub := range s.subscriptions {
		if sub.Service != "" && sub.Service != ev.Service {
			continue
		}
		if sub.IsClosed() {
			delete(s.subscriptions, id)
			s.metrics.ActiveSubscriptions--
			continue
		}
		select {
		case sub.Events <- ev:
			s.metrics.EventsDelivered++
		default:
			s.metrics.DroppedEvents++
		}
	}
}
