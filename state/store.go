package state

import "sync"

// SubscriptionID identifies a registered listener.
type SubscriptionID uint64

type subscriber struct {
	id       SubscriptionID
	listener func()
}

// Store publishes a sequence of immutable snapshots. Dispatch calls are
// serialized and listeners run synchronously, in subscription order, before
// the next Dispatch may proceed.
type Store struct {
	dispatchMu sync.Mutex

	mu      sync.RWMutex
	current *Snapshot
	subs    []subscriber
	nextID  SubscriptionID
}

// NewStore creates a Store holding initial. A nil initial starts from Default.
func NewStore(initial *Snapshot) *Store {
	if initial == nil {
		initial = Default()
	}

	return &Store{current: initial}
}

// CurrentSnapshot returns the latest published snapshot.
func (s *Store) CurrentSnapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Subscribe registers listener. It is invoked with no payload after every
// published change; call CurrentSnapshot to read the new state.
func (s *Store) Subscribe(listener func()) SubscriptionID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.subs = append(s.subs, subscriber{id: s.nextID, listener: listener})

	return s.nextID
}

// Unsubscribe removes the listener registered under id. Unknown ids are ignored.
func (s *Store) Unsubscribe(id SubscriptionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)

			return
		}
	}
}

// Dispatch reduces action against the current snapshot. If the reducer
// produces a new snapshot it is published and every listener is notified.
// It reports whether a new snapshot was published. Listeners must not call
// Dispatch.
func (s *Store) Dispatch(action Action) bool {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.current
	next := Reduce(prev, action)

	if next == prev {
		s.mu.Unlock()

		return false
	}

	s.publishLocked(next)

	return true
}

// Replace publishes snap as-is, bypassing the reducer. It is meant for
// loading a saved patch or a test fixture.
func (s *Store) Replace(snap *Snapshot) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.publishLocked(snap)
}

// publishLocked stores snap, releases mu and notifies a copy of the listener
// list so listeners may unsubscribe while being notified.
func (s *Store) publishLocked(snap *Snapshot) {
	s.current = snap
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.listener != nil {
			sub.listener()
		}
	}
}
