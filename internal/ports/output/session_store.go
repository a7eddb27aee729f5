package output

import (
	"time"

	"restaurant-concierge/internal/domain"
)

// SessionStore interface - Output port
// Registry of live sessions keyed by connection identity. The store creates
// and forgets sessions; it never hands a session to anyone but the connection
// that created it. Implementations must be thread-safe for concurrent access.
type SessionStore interface {
	// CreateSession registers a new session with a fresh unique identifier
	CreateSession(now time.Time) (*domain.Session, error)

	// DeleteSession removes a session by ID and marks it closed.
	// This operation is idempotent.
	DeleteSession(sessionID string) error

	// Count returns the number of live sessions
	Count() int
}
