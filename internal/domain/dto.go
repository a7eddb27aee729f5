package domain

import "time"

// DTOs (Data Transfer Objects) - Domain layer request/response structures

// ChatMessageRole is the role of a chat completion message
type ChatMessageRole string

const (
	ChatMessageRoleSystem    ChatMessageRole = "system"
	ChatMessageRoleUser      ChatMessageRole = "user"
	ChatMessageRoleAssistant ChatMessageRole = "assistant"
)

type (
	// ChatMessage struct - one message of a chat completion exchange
	ChatMessage struct {
		Role    ChatMessageRole
		Content string
	}

	// ChatCompletionRequest struct - request to an OpenAI-compatible chat endpoint
	ChatCompletionRequest struct {
		Messages    []ChatMessage
		Model       *string
		Temperature *float64
	}

	// ChatCompletionResponse struct - non-streaming chat completion result
	ChatCompletionResponse struct {
		Content          string
		Model            string
		PromptTokens     int
		CompletionTokens int
		TotalTokens      int
	}

	// ModelInfo struct - model metadata from /v1/models
	ModelInfo struct {
		ID      string
		Object  string
		OwnedBy string
	}

	// ExtractionRequest struct - asks the language model for slot values in one utterance
	ExtractionRequest struct {
		SessionID string
		Utterance string
		Existing  SlotState
		Today     time.Time
	}

	// GenerationRequest struct - asks the language model for the next agent utterance
	GenerationRequest struct {
		SessionID     string
		SystemContext string
		History       []Turn
		Utterance     string
	}

	// TurnResult struct - outcome of one processed user turn
	TurnResult struct {
		Reply          string
		Slots          SlotState
		NextStep       Step
		IsComplete     bool
		Filled         []string
		DateUnresolved bool
	}

	// Reply struct - an agent utterance that is not tied to a user turn (greeting)
	Reply struct {
		Text     string
		Slots    SlotState
		NextStep Step
	}
)

// HistoryToChat converts turn history into chat messages for a completion request
func HistoryToChat(history []Turn) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history))
	for _, turn := range history {
		role := ChatMessageRoleUser
		if turn.Role == TurnRoleAgent {
			role = ChatMessageRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Text})
	}
	return messages
}
