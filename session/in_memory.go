package session

import (
	"sort"
	"sync"

	"github.com/ArcadeAI/agentgraph/core"
)

// Store persists conversation sessions keyed by conversation id.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the session for the given id, creating it if absent.
	Get(id string) (*core.Session, error)
	// Peek returns the session if it exists without creating one.
	Peek(id string) (*core.Session, bool)
	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(id string) error
	// List returns all known session ids in sorted order.
	List() ([]string, error)
}

// InMemoryStore is a volatile Store implementation holding sessions in a
// process local map. Sessions are shared by pointer since they carry their
// own locking; the store mutex only guards the map itself.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Get returns an existing session or creates a new one lazily.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess := core.NewSession(id)
	s.sessions[id] = sess
	return sess, nil
}

// Peek returns the session if present.
func (s *InMemoryStore) Peek(id string) (*core.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes the session for the given id.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// List returns the ids of all stored sessions in sorted order.
func (s *InMemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
