package simulation

import "sync/atomic"

// Store holds the single published snapshot.
//
// Readers obtain a reference to an immutable snapshot; the Updater builds the
// next one off to the side and publishes it with one atomic pointer swap.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store publishing initial.
func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Snapshot returns the current snapshot. It never blocks.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Replace publishes next. Only the Updater calls this.
func (s *Store) Replace(next *Snapshot) {
	s.current.Store(next)
}

// Current implements Provider.
func (s *Store) Current() *Snapshot {
	return s.Snapshot()
}
