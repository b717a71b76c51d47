package store

import (
	"sync"

	"github.com/google/uuid"
)

// SessionNames is the session-scoped customer name storage. Entries live
// only as long as the owning session: they are dropped on kiosk reset and
// when the session is destroyed, never written to disk.
type SessionNames struct {
	mu    sync.RWMutex
	names map[uuid.UUID]string
}

// NewSessionNames creates an empty name store.
func NewSessionNames() *SessionNames {
	return &SessionNames{names: make(map[uuid.UUID]string)}
}

// Set records the name for a session.
func (s *SessionNames) Set(id uuid.UUID, name string) {
	s.mu.Lock()
	s.names[id] = name
	s.mu.Unlock()
}

// Get returns the name for a session, or "" when none is stored.
func (s *SessionNames) Get(id uuid.UUID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[id]
}

// Clear drops the name for a session.
func (s *SessionNames) Clear(id uuid.UUID) {
	s.mu.Lock()
	delete(s.names, id)
	s.mu.Unlock()
}

// Bind returns a single-session view of the store, suitable as a kiosk
// name slot.
func (s *SessionNames) Bind(id uuid.UUID) *BoundName {
	return &BoundName{store: s, id: id}
}

// BoundName is a SessionNames view pinned to one session ID.
type BoundName struct {
	store *SessionNames
	id    uuid.UUID
}

func (b *BoundName) Set(name string) { b.store.Set(b.id, name) }
func (b *BoundName) Get() string     { return b.store.Get(b.id) }
func (b *BoundName) Clear()          { b.store.Clear(b.id) }
