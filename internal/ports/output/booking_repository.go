package output

import (
	"context"

	"restaurant-concierge/internal/domain"
)

// BookingRepository interface - Output port
// Defines what the application needs from booking persistence
type BookingRepository interface {
	// SaveBooking persists a new booking and returns the stored record
	SaveBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}
