package session

import (
	"sync"

	"github.com/hupe1980/goswarm/core"
)

// Store persists conversation histories keyed by session id. Implementations
// must be safe for concurrent access.
type Store interface {
	// History returns the stored message history for the session. An unknown
	// session yields an empty history, not an error.
	History(sessionID string) ([]core.Message, error)

	// Append adds messages to the session history, creating it if needed.
	Append(sessionID string, msgs ...core.Message) error
}

// InMemoryStore is a volatile Store implementation keeping histories in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Returned histories are cloned to prevent
// external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]core.Message
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]core.Message)}
}

// History returns a clone of the stored history for the session.
func (s *InMemoryStore) History(sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CloneHistory(s.sessions[sessionID]), nil
}

// Append adds messages to an existing or newly created session.
func (s *InMemoryStore) Append(sessionID string, msgs ...core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msgs...)
	return nil
}

// Clear removes the history of the given session.
func (s *InMemoryStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
