package application

import (
	"context"
	"time"

	"restaurant-concierge/internal/domain"
)

// Mock implementations for testing

// MockLanguageModel implements output.LanguageModel for testing
type MockLanguageModel struct {
	ExtractFunc      func(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error)
	GenerateFunc     func(ctx context.Context, request domain.GenerationRequest) (string, error)
	ClearContextFunc func(ctx context.Context, sessionID string) error

	// Captured values for assertions
	ExtractRequests  []domain.ExtractionRequest
	GenerateRequests []domain.GenerationRequest
	ClearedSessions  []string
}

func (m *MockLanguageModel) Extract(ctx context.Context, request domain.ExtractionRequest) (domain.SlotPatch, error) {
	m.ExtractRequests = append(m.ExtractRequests, request)
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, request)
	}
	return domain.SlotPatch{}, nil
}

func (m *MockLanguageModel) Generate(ctx context.Context, request domain.GenerationRequest) (string, error) {
	m.GenerateRequests = append(m.GenerateRequests, request)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, request)
	}
	return "AI response", nil
}

func (m *MockLanguageModel) ClearContext(ctx context.Context, sessionID string) error {
	m.ClearedSessions = append(m.ClearedSessions, sessionID)
	if m.ClearContextFunc != nil {
		return m.ClearContextFunc(ctx, sessionID)
	}
	return nil
}

// LastGenerateRequest returns the most recent generation request
func (m *MockLanguageModel) LastGenerateRequest() *domain.GenerationRequest {
	if len(m.GenerateRequests) == 0 {
		return nil
	}
	return &m.GenerateRequests[len(m.GenerateRequests)-1]
}

// MockWeatherProvider implements output.WeatherProvider for testing
type MockWeatherProvider struct {
	ForecastForFunc func(ctx context.Context, date time.Time, location string) (*domain.WeatherObservation, error)
	CurrentFunc     func(ctx context.Context, location string) (*domain.WeatherObservation, error)

	// Captured values for assertions
	ForecastDates []time.Time
	CurrentCalls  int
}

func (m *MockWeatherProvider) ForecastFor(ctx context.Context, date time.Time, location string) (*domain.WeatherObservation, error) {
	m.ForecastDates = append(m.ForecastDates, date)
	if m.ForecastForFunc != nil {
		return m.ForecastForFunc(ctx, date, location)
	}
	return &domain.WeatherObservation{Condition: "Clear", Temperature: 26, Description: "clear sky"}, nil
}

func (m *MockWeatherProvider) Current(ctx context.Context, location string) (*domain.WeatherObservation, error) {
	m.CurrentCalls++
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx, location)
	}
	return &domain.WeatherObservation{Condition: "Clouds", Temperature: 22, Description: "few clouds"}, nil
}

// MockWeatherCache implements output.WeatherCache for testing
type MockWeatherCache struct {
	Entries  map[string]*domain.WeatherObservation
	GetErr   error
	SetErr   error
	SetCalls int
}

func (m *MockWeatherCache) Get(ctx context.Context, key string) (*domain.WeatherObservation, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Entries[key], nil
}

func (m *MockWeatherCache) Set(ctx context.Context, key string, observation *domain.WeatherObservation, ttl time.Duration) error {
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Entries == nil {
		m.Entries = map[string]*domain.WeatherObservation{}
	}
	m.Entries[key] = observation
	return nil
}

// MockBookingRepository implements output.BookingRepository for testing
type MockBookingRepository struct {
	SaveBookingFunc func(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)

	// Captured values for assertions
	Saved []*domain.Booking
}

func (m *MockBookingRepository) SaveBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if m.SaveBookingFunc != nil {
		return m.SaveBookingFunc(ctx, booking)
	}
	m.Saved = append(m.Saved, booking)
	return booking, nil
}

// Test helpers

// testToday is the reference date used by every test clock
var testToday = time.Date(2025, 12, 3, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testToday }

func newTestSession() *domain.Session {
	return domain.NewSession("test-session-id", testToday, domain.DefaultMaxHistory)
}

func completeSlots() domain.SlotState {
	return domain.SlotState{
		CustomerName:      "Mani",
		NumberOfGuests:    4,
		BookingDate:       "December 5th",
		BookingTime:       "7:30 PM",
		SeatingPreference: "outdoor",
	}
}
