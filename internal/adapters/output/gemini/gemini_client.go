package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"restaurant-concierge/configs"
	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Compile-time check to ensure GeminiAdapter implements LanguageModel interface
var _ output.LanguageModel = (*GeminiAdapter)(nil)

const (
	defaultModel = "gemini-1.5-flash"

	roleUser  = "user"
	roleModel = "model"

	// greetingCue stands in for the user message when the agent speaks first
	greetingCue = "(The customer has just connected.)"
)

// GeminiAdapter struct - Output adapter for Google's Gemini models.
// Conversation history is kept per session and replayed into a fresh chat on each turn,
// so the system context can change between turns.
type GeminiAdapter struct {
	client     *genai.Client
	modelName  string
	maxHistory int

	histories sync.Map // session id -> *conversation
}

type conversation struct {
	mu      sync.Mutex
	history []*genai.Content
}

// NewGeminiAdapter func - Creates a Gemini client from an API key
func NewGeminiAdapter(ctx context.Context, config configs.Gemini, maxHistory int) (*GeminiAdapter, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	modelName := config.Model
	if modelName == "" {
		modelName = defaultModel
	}
	if maxHistory <= 0 {
		maxHistory = domain.DefaultMaxHistory
	}

	logrus.Infof("Gemini adapter initialized with model: %s", modelName)
	return &GeminiAdapter{client: client, modelName: modelName, maxHistory: maxHistory}, nil
}

// Extract asks Gemini for a JSON object with the slot values stated in the utterance
func (g *GeminiAdapter) Extract(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(domain.BuildExtractionPrompt(request.Existing, request.Today)))
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(request.Utterance))
	if err != nil {
		return domain.SlotPatch{}, fmt.Errorf("%w: gemini generate error: %v", domain.ErrExtractionFailure, err)
	}
	text, err := responseText(resp)
	if err != nil {
		return domain.SlotPatch{}, fmt.Errorf("%w: %v", domain.ErrExtractionFailure, err)
	}
	return domain.ParseSlotPatch(text)
}

// Generate continues the session's chat with the current system context.
// The first call for a session seeds the chat from the supplied history.
func (g *GeminiAdapter) Generate(ctx context.Context, request domain.GenerationRequest) (string, error) {
	conv := g.conversation(request.SessionID, request.History)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(request.SystemContext))
	model.SetTemperature(0.7)

	chat := model.StartChat()
	chat.History = conv.history

	utterance := request.Utterance
	if strings.TrimSpace(utterance) == "" {
		utterance = greetingCue
	}

	resp, err := chat.SendMessage(ctx, genai.Text(utterance))
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate error: %v", domain.ErrGenerationFailure, err)
	}
	text, err := responseText(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}

	conv.history = trimHistory(chat.History, g.maxHistory)
	return text, nil
}

// ClearContext forgets the chat history held for a session
func (g *GeminiAdapter) ClearContext(ctx context.Context, sessionID string) error {
	g.histories.Delete(sessionID)
	return nil
}

// Close releases the underlying client
func (g *GeminiAdapter) Close() error {
	return g.client.Close()
}

func (g *GeminiAdapter) conversation(sessionID string, seed []domain.Turn) *conversation {
	if existing, ok := g.histories.Load(sessionID); ok {
		return existing.(*conversation)
	}
	conv := &conversation{history: trimHistory(toContents(seed), g.maxHistory)}
	actual, _ := g.histories.LoadOrStore(sessionID, conv)
	return actual.(*conversation)
}

// toContents converts turns into Gemini contents. Consecutive turns with the
// same role are joined, and a leading agent turn is preceded by the greeting cue
// because a chat must open with a user message.
func toContents(turns []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns)+1)
	for _, turn := range turns {
		role := roleUser
		if turn.Role == domain.TurnRoleAgent {
			role = roleModel
		}
		if len(contents) == 0 && role == roleModel {
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []genai.Part{genai.Text(greetingCue)}})
		}
		if last := len(contents) - 1; last >= 0 && contents[last].Role == role {
			contents[last].Parts = append(contents[last].Parts, genai.Text(turn.Text))
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(turn.Text)}})
	}
	return contents
}

// trimHistory keeps at most limit contents, dropping from the front until the
// history again opens with a user message.
func trimHistory(history []*genai.Content, limit int) []*genai.Content {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	for len(history) > 0 && history[0].Role != roleUser {
		history = history[1:]
	}
	return history
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
