package http

import (
	"restaurant-concierge/internal/domain"
)

// Inbound message types
const (
	InboundGreeting        = "greeting"
	InboundUserMessage     = "user_message"
	InboundFinalizeBooking = "finalize_booking"
	InboundNewBooking      = "new_booking"
)

// Outbound message types
const (
	OutboundConnected        = "connected"
	OutboundGreeting         = "greeting"
	OutboundResponse         = "response"
	OutboundBookingReady     = "booking_ready"
	OutboundBookingConfirmed = "booking_confirmed"
	OutboundProcessing       = "processing"
	OutboundError            = "error"
)

type (
	// InboundMessage struct - envelope received from the client
	InboundMessage struct {
		Type              string                     `json:"type" validate:"required,oneof=greeting user_message finalize_booking new_booking"`
		Message           string                     `json:"message" validate:"required_if=Type user_message,max=2000"`
		ConversationState *domain.SlotState          `json:"conversationState,omitempty"`
		BookingData       *domain.SlotState          `json:"bookingData,omitempty"`
		WeatherInfo       *domain.WeatherObservation `json:"weatherInfo,omitempty"`
	}

	// OutboundMessage struct - envelope sent to the client
	OutboundMessage struct {
		Type              string            `json:"type"`
		SessionID         string            `json:"sessionId,omitempty"`
		Text              string            `json:"text,omitempty"`
		ConversationState *domain.SlotState `json:"conversationState,omitempty"`
		NextStep          domain.Step       `json:"nextStep,omitempty"`
		Booking           *domain.Booking   `json:"booking,omitempty"`
		Message           string            `json:"message,omitempty"`
		Reason            string            `json:"reason,omitempty"`
		Missing           []string          `json:"missing,omitempty"`
	}
)

func errorMessage(message string) OutboundMessage {
	return OutboundMessage{Type: OutboundError, Message: message}
}
