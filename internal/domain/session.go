package domain

import (
	"sync/atomic"
	"time"
)

// DefaultMaxHistory bounds the turn history handed to the language model
const DefaultMaxHistory = 20

// TurnRole identifies who produced a turn
type TurnRole string

const (
	TurnRoleUser  TurnRole = "user"
	TurnRoleAgent TurnRole = "agent"
)

// Turn is one entry of the conversation history
type Turn struct {
	Role      TurnRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the dialogue state of one live connection. It is owned by the
// goroutine serving that connection and is never mutated from anywhere else;
// only the closed flag is shared with the connection's reader.
type Session struct {
	ID           string
	ConnectedAt  time.Time
	LastActivity time.Time
	Slots        SlotState
	history      []Turn
	maxHistory   int
	closed       atomic.Bool
}

// NewSession creates a session for a freshly opened connection
func NewSession(id string, now time.Time, maxHistory int) *Session {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Session{
		ID:           id,
		ConnectedAt:  now,
		LastActivity: now,
		history:      make([]Turn, 0, maxHistory),
		maxHistory:   maxHistory,
	}
}

// AddTurn appends a turn, evicting the oldest entries beyond the history cap
func (s *Session) AddTurn(role TurnRole, text string, at time.Time) {
	s.history = append(s.history, Turn{Role: role, Text: text, Timestamp: at})
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = append(s.history[:0], s.history[over:]...)
	}
	s.LastActivity = at
}

// History returns a copy of the turn history, oldest first
func (s *Session) History() []Turn {
	history := make([]Turn, len(s.history))
	copy(history, s.history)
	return history
}

// Reset clears the slots and the history so a new booking starts clean
func (s *Session) Reset() {
	s.Slots = SlotState{}
	s.history = s.history[:0]
}

// MarkClosed flags the session as torn down. Safe to call from any goroutine.
func (s *Session) MarkClosed() {
	s.closed.Store(true)
}

// Closed reports whether the session has been torn down
func (s *Session) Closed() bool {
	return s.closed.Load()
}
