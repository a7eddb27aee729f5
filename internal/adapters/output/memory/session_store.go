package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"

	"github.com/google/uuid"
)

// Compile-time check to ensure MemorySessionStore implements SessionStore interface
var _ output.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore struct - Output adapter for in-memory session registration
// Uses sync.Map so connection goroutines register and forget their sessions
// without a global lock. Sessions are only ever mutated by their owner.
type MemorySessionStore struct {
	sessions   sync.Map
	count      atomic.Int64
	maxHistory int
}

// NewMemorySessionStore creates a new in-memory session store.
// maxHistory: number of turns each new session keeps for the language model
func NewMemorySessionStore(maxHistory int) *MemorySessionStore {
	if maxHistory <= 0 {
		maxHistory = domain.DefaultMaxHistory
	}
	return &MemorySessionStore{
		maxHistory: maxHistory,
	}
}

// CreateSession registers a new session under a random UUID.
func (m *MemorySessionStore) CreateSession(now time.Time) (*domain.Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	session := domain.NewSession(id.String(), now, m.maxHistory)
	m.sessions.Store(session.ID, session)
	m.count.Add(1)
	return session, nil
}

// DeleteSession removes a session and marks it closed so an in-flight turn
// discards its result. Deleting a non-existent session does not return an error.
func (m *MemorySessionStore) DeleteSession(sessionID string) error {
	value, loaded := m.sessions.LoadAndDelete(sessionID)
	if !loaded {
		return nil
	}
	m.count.Add(-1)
	if session, ok := value.(*domain.Session); ok {
		session.MarkClosed()
	}
	return nil
}

// Count returns the number of live sessions.
func (m *MemorySessionStore) Count() int {
	return int(m.count.Load())
}
