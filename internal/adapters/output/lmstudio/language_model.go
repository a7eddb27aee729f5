package lmstudio

import (
	"context"
	"fmt"
	"strings"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"
)

// Compile-time check to ensure LMStudioClientAdapter implements LanguageModel interface
var _ output.LanguageModel = (*LMStudioClientAdapter)(nil)

var (
	extractionTemperature = 0.0
	replyTemperature      = 0.7
)

// Extract asks the model for the slot values stated in the utterance.
// The prompt lists the already-known fields so they are not re-derived.
func (a *LMStudioClientAdapter) Extract(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
	response, err := a.ChatCompletion(ctx, domain.ChatCompletionRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.ChatMessageRoleSystem, Content: domain.BuildExtractionPrompt(request.Existing, request.Today)},
			{Role: domain.ChatMessageRoleUser, Content: request.Utterance},
		},
		Temperature: &extractionTemperature,
	})
	if err != nil {
		return domain.SlotPatch{}, fmt.Errorf("%w: %v", domain.ErrExtractionFailure, err)
	}
	return domain.ParseSlotPatch(response.Content)
}

// Generate produces the next agent utterance. The API is stateless, so the
// recent history is replayed on every call.
func (a *LMStudioClientAdapter) Generate(ctx context.Context, request domain.GenerationRequest) (string, error) {
	system := request.SystemContext
	if a.systemPrompt != "" {
		system = a.systemPrompt + "\n\n" + system
	}

	messages := make([]domain.ChatMessage, 0, len(request.History)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.ChatMessageRoleSystem, Content: system})
	messages = append(messages, domain.HistoryToChat(request.History)...)
	if strings.TrimSpace(request.Utterance) != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.ChatMessageRoleUser, Content: request.Utterance})
	}

	response, err := a.ChatCompletion(ctx, domain.ChatCompletionRequest{
		Messages:    messages,
		Temperature: &replyTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}

	text := strings.TrimSpace(response.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGenerationFailure)
	}
	return text, nil
}

// ClearContext is a no-op: LM Studio keeps no per-session state.
func (a *LMStudioClientAdapter) ClearContext(ctx context.Context, sessionID string) error {
	return nil
}
