package memory

import (
	"sync"
	"testing"
	"time"

	"restaurant-concierge/internal/domain"
)

// TestNewMemorySessionStoreAppliesDefaultHistory tests that a zero history cap falls back to the default
func TestNewMemorySessionStoreAppliesDefaultHistory(t *testing.T) {
	now := time.Date(2025, 12, 3, 18, 0, 0, 0, time.UTC)
	for _, tt := range []struct {
		maxHistory int
		want       int
	}{
		{0, domain.DefaultMaxHistory},
		{6, 6},
	} {
		session, err := NewMemorySessionStore(tt.maxHistory).CreateSession(now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for i := 0; i < tt.want+5; i++ {
			session.AddTurn(domain.TurnRoleUser, "hello", now)
		}
		if got := len(session.History()); got != tt.want {
			t.Errorf("maxHistory %d: expected history capped at %d, got %d", tt.maxHistory, tt.want, got)
		}
	}
}

// TestCreateSessionAssignsUniqueIDs tests session creation and registration
func TestCreateSessionAssignsUniqueIDs(t *testing.T) {
	store := NewMemorySessionStore(10)
	now := time.Date(2025, 12, 3, 18, 0, 0, 0, time.UTC)

	first, err := store.CreateSession(now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := store.CreateSession(now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first.ID == "" || second.ID == "" {
		t.Fatal("expected non-empty session IDs")
	}
	if first.ID == second.ID {
		t.Errorf("expected unique session IDs, both were %s", first.ID)
	}
	if !first.ConnectedAt.Equal(now) {
		t.Errorf("expected ConnectedAt %v, got %v", now, first.ConnectedAt)
	}
	if store.Count() != 2 {
		t.Errorf("expected 2 live sessions, got %d", store.Count())
	}
}

// TestDeleteSessionMarksClosedAndIsIdempotent tests teardown
func TestDeleteSessionMarksClosedAndIsIdempotent(t *testing.T) {
	store := NewMemorySessionStore(10)
	session, _ := store.CreateSession(time.Now())

	if err := store.DeleteSession(session.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !session.Closed() {
		t.Error("expected deleted session to be marked closed")
	}
	if store.Count() != 0 {
		t.Errorf("expected 0 live sessions, got %d", store.Count())
	}

	// Second delete and unknown IDs are no-ops
	if err := store.DeleteSession(session.ID); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
	if err := store.DeleteSession("does-not-exist"); err != nil {
		t.Errorf("expected no error for unknown session, got %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("expected count to stay 0, got %d", store.Count())
	}
}

// TestConcurrentCreateAndDelete tests that the registry is safe for concurrent connections
func TestConcurrentCreateAndDelete(t *testing.T) {
	store := NewMemorySessionStore(10)
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := store.CreateSession(time.Now())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			_ = store.DeleteSession(session.ID)
		}()
	}
	wg.Wait()

	if store.Count() != 0 {
		t.Errorf("expected all sessions removed, got %d", store.Count())
	}
}
