// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Event is one coordinator state transition published to subscribers.
type Event struct {
	// Type is "state", "catalog" or "selection".
	Type      string    `json:"type"`
	State     *State    `json:"state,omitempty"`
	Catalog   *Snapshot `json:"catalog,omitempty"`
	Selection *string   `json:"selection,omitempty"`
}

// Store holds the published FetchState/Snapshot/Selection triple. It has a
// single writer (the fetcher, plus selection updates from the switchboard)
// and many readers; subscribers receive every transition as an Event.
type Store struct {
	mu        sync.RWMutex
	state     State
	snapshot  Snapshot
	selection string

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewStore creates a store in the idle state.
func NewStore() *Store {
	return &Store{
		state: State{Phase: PhaseIdle},
		subs:  make(map[int]chan Event),
	}
}

// State returns the current fetch state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns the currently published catalog snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Selection returns the currently selected model id, possibly empty.
func (s *Store) Selection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Subscribe registers a new event subscriber. The returned cancel function
// removes the subscription and closes the channel. Slow subscribers drop
// events rather than block the writer.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			log.WithField("subscriber", id).Debug("Dropping event for slow subscriber")
		}
	}
}

// SetSelection publishes a new selected model id.
func (s *Store) SetSelection(id string) {
	s.mu.Lock()
	changed := s.selection != id
	s.selection = id
	s.mu.Unlock()

	if changed {
		sel := id
		s.notify(Event{Type: "selection", Selection: &sel})
	}
}

// setIdle clears the published catalog and failure and returns to idle.
func (s *Store) setIdle() {
	s.mu.Lock()
	s.state = State{Phase: PhaseIdle}
	s.snapshot = Snapshot{}
	st := s.state
	s.mu.Unlock()

	s.notify(Event{Type: "state", State: &st})
}

// setPending marks a fetch for target in flight, clearing previously shown
// entries and any prior failure for the new attempt.
func (s *Store) setPending(target string) {
	s.mu.Lock()
	s.state = State{Phase: PhasePending, Target: target}
	s.snapshot = Snapshot{}
	st := s.state
	s.mu.Unlock()

	s.notify(Event{Type: "state", State: &st})
}

// setFailed records a classified failure for target.
func (s *Store) setFailed(target string, f *Failure) {
	s.mu.Lock()
	s.state = State{Phase: PhaseFailed, Target: target, Failure: f}
	st := s.state
	s.mu.Unlock()

	s.notify(Event{Type: "state", State: &st})
}

// setLoaded publishes a fresh snapshot and reconciles the selection against
// it.
func (s *Store) setLoaded(snap Snapshot) {
	s.mu.Lock()
	s.state = State{Phase: PhaseLoaded, Target: snap.Endpoint}
	s.snapshot = snap
	reconciled := Reconcile(snap.Entries, s.selection)
	selectionChanged := reconciled != s.selection
	s.selection = reconciled
	st := s.state
	s.mu.Unlock()

	s.notify(Event{Type: "state", State: &st})
	s.notify(Event{Type: "catalog", Catalog: &snap})
	if selectionChanged {
		sel := reconciled
		s.notify(Event{Type: "selection", Selection: &sel})
	}
}
