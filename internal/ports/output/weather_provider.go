package output

import (
	"context"
	"time"

	"restaurant-concierge/internal/domain"
)

// WeatherProvider interface - Output port
// Defines what the application needs from an external weather service.
type WeatherProvider interface {
	// ForecastFor returns the forecast for the given calendar date.
	// Returns domain.ErrForecastOutOfRange when the date is beyond the forecast horizon.
	ForecastFor(ctx context.Context, date time.Time, location string) (*domain.WeatherObservation, error)

	// Current returns present conditions at the location
	Current(ctx context.Context, location string) (*domain.WeatherObservation, error)
}

// WeatherCache interface - Output port
// Short-lived cache of weather observations keyed by location and date.
type WeatherCache interface {
	// Get returns nil, nil on a cache miss
	Get(ctx context.Context, key string) (*domain.WeatherObservation, error)
	Set(ctx context.Context, key string, observation *domain.WeatherObservation, ttl time.Duration) error
}
