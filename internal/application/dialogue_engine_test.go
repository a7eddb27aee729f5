package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant-concierge/internal/domain"
)

// TestProcessTurn_NameAndGuestsAdvanceToDate tests the opening turn scenario
func TestProcessTurn_NameAndGuestsAdvanceToDate(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			return domain.SlotPatch{CustomerName: "Mani", NumberOfGuests: 4}, nil
		},
		GenerateFunc: func(ctx context.Context, request domain.GenerationRequest) (string, error) {
			return "Nice to meet you, Mani! Which date?", nil
		},
	}
	engine := NewDialogueEngine(lm, nil, WithClock(fixedClock))
	session := newTestSession()

	// Act
	result := engine.ProcessTurn(context.Background(), session, "I'm Mani, table for 4")

	// Assert
	if session.Slots.CustomerName != "Mani" {
		t.Errorf("Expected customerName Mani, got %q", session.Slots.CustomerName)
	}
	if session.Slots.NumberOfGuests != 4 {
		t.Errorf("Expected numberOfGuests 4, got %d", session.Slots.NumberOfGuests)
	}
	if result.NextStep != domain.StepAskDate {
		t.Errorf("Expected next step %s, got %s", domain.StepAskDate, result.NextStep)
	}
	if result.IsComplete {
		t.Error("Expected turn not to complete the booking")
	}
	if result.Reply != "Nice to meet you, Mani! Which date?" {
		t.Errorf("Unexpected reply %q", result.Reply)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 turns in history, got %d", len(history))
	}
	if history[0].Role != domain.TurnRoleUser || history[1].Role != domain.TurnRoleAgent {
		t.Errorf("Expected user then agent turns, got %s then %s", history[0].Role, history[1].Role)
	}
}

// TestProcessTurn_ExtractionSeesExistingState tests that extraction is told what is already known
func TestProcessTurn_ExtractionSeesExistingState(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{}
	engine := NewDialogueEngine(lm, nil, WithClock(fixedClock))
	session := newTestSession()
	session.Slots.CustomerName = "Mani"

	// Act
	engine.ProcessTurn(context.Background(), session, "for two")

	// Assert
	if len(lm.ExtractRequests) != 1 {
		t.Fatalf("Expected 1 extraction, got %d", len(lm.ExtractRequests))
	}
	req := lm.ExtractRequests[0]
	if req.Existing.CustomerName != "Mani" {
		t.Errorf("Expected existing state in extraction request, got %+v", req.Existing)
	}
	if !req.Today.Equal(testToday) {
		t.Errorf("Expected injected clock for today, got %v", req.Today)
	}

	gen := lm.LastGenerateRequest()
	if gen == nil || !strings.Contains(gen.SystemContext, "customerName: Mani") {
		t.Errorf("Expected system context to mark customerName as known")
	}
}

// TestProcessTurn_FirstWriteWins tests that later extractions never overwrite set slots
func TestProcessTurn_FirstWriteWins(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			return domain.SlotPatch{CustomerName: "Bob", NumberOfGuests: 9, BookingTime: "8 PM"}, nil
		},
	}
	engine := NewDialogueEngine(lm, nil, WithClock(fixedClock))
	session := newTestSession()
	session.Slots.CustomerName = "Mani"
	session.Slots.NumberOfGuests = 4

	// Act
	result := engine.ProcessTurn(context.Background(), session, "actually Bob, 9 people at 8")

	// Assert
	if session.Slots.CustomerName != "Mani" || session.Slots.NumberOfGuests != 4 {
		t.Errorf("Expected set slots unchanged, got %+v", session.Slots)
	}
	if session.Slots.BookingTime != "8 PM" {
		t.Errorf("Expected unset bookingTime to be filled, got %q", session.Slots.BookingTime)
	}
	if len(result.Filled) != 1 || result.Filled[0] != domain.SlotBookingTime {
		t.Errorf("Expected only bookingTime filled, got %v", result.Filled)
	}
}

// TestProcessTurn_ExtractionFailureIsNotFatal tests graceful degradation on extraction failure
func TestProcessTurn_ExtractionFailureIsNotFatal(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			return domain.SlotPatch{}, domain.ErrExtractionFailure
		},
		GenerateFunc: func(ctx context.Context, request domain.GenerationRequest) (string, error) {
			return "Could you tell me your name?", nil
		},
	}
	engine := NewDialogueEngine(lm, nil, WithClock(fixedClock))
	session := newTestSession()

	// Act
	result := engine.ProcessTurn(context.Background(), session, "hello")

	// Assert
	if result.Reply != "Could you tell me your name?" {
		t.Errorf("Expected generated reply, got %q", result.Reply)
	}
	if result.NextStep != domain.StepAskName {
		t.Errorf("Expected next step %s, got %s", domain.StepAskName, result.NextStep)
	}
	if len(session.History()) != 2 {
		t.Errorf("Expected turn to be recorded, got %d entries", len(session.History()))
	}
}

// TestProcessTurn_GenerationFailureUsesFallback tests the fixed apology on generation failure
func TestProcessTurn_GenerationFailureUsesFallback(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			return domain.SlotPatch{CustomerName: "Mani"}, nil
		},
		GenerateFunc: func(ctx context.Context, request domain.GenerationRequest) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	engine := NewDialogueEngine(lm, nil, WithClock(fixedClock))
	session := newTestSession()

	// Act
	result := engine.ProcessTurn(context.Background(), session, "I'm Mani")

	// Assert
	if result.Reply != domain.FallbackReply {
		t.Errorf("Expected fallback reply, got %q", result.Reply)
	}
	if session.Slots.CustomerName != "Mani" {
		t.Errorf("Expected extraction to be merged despite generation failure")
	}
}

// TestProcessTurn_AttachesWeatherOnce tests weather attachment when the date becomes known
func TestProcessTurn_AttachesWeatherOnce(t *testing.T) {
	// Arrange
	provider := &MockWeatherProvider{}
	weather := NewWeatherService(provider, nil, "Chennai,IN", 0)
	patches := []domain.SlotPatch{
		{BookingDate: "December 5th"},
		{BookingTime: "7 PM"},
	}
	turn := 0
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			p := patches[turn]
			turn++
			return p, nil
		},
	}
	engine := NewDialogueEngine(lm, weather, WithClock(fixedClock))
	session := newTestSession()

	// Act
	engine.ProcessTurn(context.Background(), session, "December 5th please")
	first := session.Slots.WeatherInfo
	engine.ProcessTurn(context.Background(), session, "at 7")

	// Assert
	if first == nil {
		t.Fatal("Expected weather to be attached after the date was set")
	}
	if first.Recommendation == nil || first.Recommendation.Seating != domain.SeatingOutdoor {
		t.Errorf("Expected outdoor recommendation for clear 26°C, got %+v", first.Recommendation)
	}
	if session.Slots.WeatherInfo != first {
		t.Error("Expected weather never to be replaced once attached")
	}
	if len(provider.ForecastDates) != 1 {
		t.Fatalf("Expected exactly 1 forecast lookup, got %d", len(provider.ForecastDates))
	}
	if got := provider.ForecastDates[0].Format(domain.OnlyDate); got != "2025-12-05" {
		t.Errorf("Expected forecast for 2025-12-05, got %s", got)
	}
	if !strings.Contains(lm.LastGenerateRequest().SystemContext, "Weather for the booking date") {
		t.Error("Expected weather in the system context")
	}
}

// TestProcessTurn_WeatherFailureUsesDefault tests that weather outages never fail the turn
func TestProcessTurn_WeatherFailureUsesDefault(t *testing.T) {
	// Arrange
	provider := &MockWeatherProvider{
		ForecastForFunc: func(ctx context.Context, date time.Time, location string) (*domain.WeatherObservation, error) {
			return nil, errors.New("timeout")
		},
	}
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			return domain.SlotPatch{BookingDate: "tomorrow"}, nil
		},
	}
	engine := NewDialogueEngine(lm, NewWeatherService(provider, nil, "Chennai,IN", 0), WithClock(fixedClock))
	session := newTestSession()

	// Act
	result := engine.ProcessTurn(context.Background(), session, "tomorrow")

	// Assert
	if session.Slots.BookingDate != "tomorrow" {
		t.Errorf("Expected date to be merged, got %q", session.Slots.BookingDate)
	}
	if session.Slots.WeatherInfo == nil || session.Slots.WeatherInfo.Condition != domain.DefaultWeatherCondition {
		t.Errorf("Expected default weather, got %+v", session.Slots.WeatherInfo)
	}
	if result.Reply == "" {
		t.Error("Expected a reply")
	}
}

// TestProcessTurn_UnresolvableDateNotMerged tests that a date the resolver rejects does not advance the state
func TestProcessTurn_UnresolvableDateNotMerged(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			return domain.SlotPatch{BookingDate: "whenever", BookingTime: "7 PM"}, nil
		},
	}
	provider := &MockWeatherProvider{}
	engine := NewDialogueEngine(lm, NewWeatherService(provider, nil, "Chennai,IN", 0), WithClock(fixedClock))
	session := newTestSession()

	// Act
	result := engine.ProcessTurn(context.Background(), session, "whenever, at 7")

	// Assert
	if session.Slots.BookingDate != "" {
		t.Errorf("Expected bookingDate to stay empty, got %q", session.Slots.BookingDate)
	}
	if session.Slots.BookingTime != "7 PM" {
		t.Errorf("Expected the rest of the extraction to be merged, got %q", session.Slots.BookingTime)
	}
	if !result.DateUnresolved {
		t.Error("Expected DateUnresolved to be reported")
	}
	if !strings.Contains(lm.LastGenerateRequest().SystemContext, "restate") {
		t.Error("Expected system context to ask the user to restate the date")
	}
	if len(provider.ForecastDates) != 0 {
		t.Errorf("Expected no weather lookup, got %d", len(provider.ForecastDates))
	}
}

// TestProcessTurn_PastDateNotMerged tests that a date with an already-passed year is asked again
func TestProcessTurn_PastDateNotMerged(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			return domain.SlotPatch{BookingDate: "March 1 2024"}, nil
		},
	}
	provider := &MockWeatherProvider{}
	engine := NewDialogueEngine(lm, NewWeatherService(provider, nil, "Chennai,IN", 0), WithClock(fixedClock))
	session := newTestSession()

	// Act
	result := engine.ProcessTurn(context.Background(), session, "March 1st 2024 please")

	// Assert
	if session.Slots.IsSet(domain.SlotBookingDate) {
		t.Errorf("Expected bookingDate to stay empty, got %q", session.Slots.BookingDate)
	}
	if !result.DateUnresolved {
		t.Error("Expected DateUnresolved to be reported")
	}
	if result.NextStep != domain.StepAskName {
		t.Errorf("Expected next step ask_name, got %s", result.NextStep)
	}
	if len(provider.ForecastDates) != 0 {
		t.Errorf("Expected no weather lookup, got %d", len(provider.ForecastDates))
	}
}

// TestProcessTurn_CompletesBooking tests the completion predicate after the last required slot
func TestProcessTurn_CompletesBooking(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{
		ExtractFunc: func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
			return domain.SlotPatch{SeatingPreference: "outdoor"}, nil
		},
	}
	engine := NewDialogueEngine(lm, nil, WithClock(fixedClock))
	session := newTestSession()
	slots := completeSlots()
	slots.SeatingPreference = ""
	session.Slots = slots

	// Act
	result := engine.ProcessTurn(context.Background(), session, "outside please")

	// Assert
	if !result.IsComplete {
		t.Error("Expected booking to be complete")
	}
	if result.NextStep != domain.StepConfirm {
		t.Errorf("Expected next step confirm, got %s", result.NextStep)
	}
}

// TestProcessTurn_HistoryExcludesCurrentUtterance tests what generation receives as history
func TestProcessTurn_HistoryExcludesCurrentUtterance(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{}
	engine := NewDialogueEngine(lm, nil, WithClock(fixedClock))
	session := newTestSession()
	session.AddTurn(domain.TurnRoleAgent, "Welcome!", testToday)

	// Act
	engine.ProcessTurn(context.Background(), session, "hi there")

	// Assert
	gen := lm.LastGenerateRequest()
	if len(gen.History) != 1 || gen.History[0].Text != "Welcome!" {
		t.Errorf("Expected only prior turns in history, got %+v", gen.History)
	}
	if gen.Utterance != "hi there" {
		t.Errorf("Expected utterance passed separately, got %q", gen.Utterance)
	}
}

// TestGreet_FallbackOnFailure tests the greeting fallback
func TestGreet_FallbackOnFailure(t *testing.T) {
	// Arrange
	lm := &MockLanguageModel{
		GenerateFunc: func(ctx context.Context, request domain.GenerationRequest) (string, error) {
			return "", domain.ErrGenerationFailure
		},
	}
	engine := NewDialogueEngine(lm, nil, WithClock(fixedClock))
	session := newTestSession()

	// Act
	reply := engine.Greet(context.Background(), session, nil)

	// Assert
	if reply.Text != domain.FallbackGreeting {
		t.Errorf("Expected fallback greeting, got %q", reply.Text)
	}
	if reply.NextStep != domain.StepAskName {
		t.Errorf("Expected next step ask_name, got %s", reply.NextStep)
	}
	if h := session.History(); len(h) != 1 || h[0].Role != domain.TurnRoleAgent {
		t.Errorf("Expected greeting recorded as agent turn, got %+v", h)
	}
}
