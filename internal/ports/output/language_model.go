package output

import (
	"context"

	"restaurant-concierge/internal/domain"
)

// LanguageModel interface - Output port
// Defines what the dialogue needs from a generative language model.
// Implementations apply their own timeout and retry policy; callers treat
// any returned error as "unavailable".
type LanguageModel interface {
	// Extract returns the slot values stated in the utterance, limited to
	// fields that are not already present in request.Existing.
	Extract(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error)

	// Generate returns the next agent utterance for the given system context,
	// recent history and user utterance (empty for a greeting).
	Generate(ctx context.Context, request domain.GenerationRequest) (string, error)

	// ClearContext drops any conversation state the model keeps for a session.
	// Clearing an unknown session is not an error.
	ClearContext(ctx context.Context, sessionID string) error
}
