package input

import (
	"context"

	"restaurant-concierge/internal/domain"
)

// ConversationService interface - Input port (use case)
// Defines what a connected client can ask of its booking session.
// Every method operates on the single session owned by the caller.
type ConversationService interface {
	// Greet produces the opening utterance. A weather observation supplied by
	// the client is attached if the session has none.
	Greet(ctx context.Context, session *domain.Session, weather *domain.WeatherObservation) domain.Reply

	// HandleUserMessage runs one dialogue turn. clientState and weather are what
	// the client last saw; they are merged first-write-wins so a reconnecting
	// client resumes where it left off.
	HandleUserMessage(ctx context.Context, session *domain.Session, message string, clientState *domain.SlotState, weather *domain.WeatherObservation) domain.TurnResult

	// FinalizeBooking commits the booking. Errors are *domain.FinalizationError
	// and leave the session untouched.
	FinalizeBooking(ctx context.Context, session *domain.Session, bookingData domain.SlotState) (*domain.Booking, error)

	// StartOver discards the booking under construction and greets again
	StartOver(ctx context.Context, session *domain.Session) domain.Reply

	// EndSession releases the language model context of a closed connection
	EndSession(ctx context.Context, session *domain.Session)
}
