package domain

import (
	"fmt"
	"strings"
)

// Recommend maps a weather observation to a seating suggestion. It is total:
// every observation, including nil and unrecognized conditions, gets one.
//
// Precipitation, storms and snow always mean indoor. Clear skies favour
// outdoor between 20 and 32°C; clouds between 18 and 28°C.
func Recommend(obs *WeatherObservation) Recommendation {
	if obs == nil {
		return Recommendation{
			Seating: SeatingIndoor,
			Message: "Indoor seating is recommended.",
		}
	}

	condition := strings.ToLower(strings.TrimSpace(obs.Condition))
	temp := obs.Temperature

	switch {
	case strings.Contains(condition, "thunder"):
		return Recommendation{
			Seating: SeatingIndoor,
			Message: "Thunderstorms are expected, so we recommend indoor seating for your safety and comfort.",
		}
	case strings.Contains(condition, "rain"), strings.Contains(condition, "drizzle"):
		return Recommendation{
			Seating: SeatingIndoor,
			Message: "Rain is expected, so we recommend indoor seating to keep you dry.",
		}
	case strings.Contains(condition, "snow"):
		return Recommendation{
			Seating: SeatingIndoor,
			Message: "Snow is expected, so we recommend cozy indoor seating.",
		}
	case strings.Contains(condition, "clear"), strings.Contains(condition, "sun"):
		switch {
		case temp > 32:
			return Recommendation{
				Seating: SeatingIndoor,
				Message: fmt.Sprintf("It will be sunny but hot (%.0f°C), so air-conditioned indoor seating is recommended.", temp),
			}
		case temp < 20:
			return Recommendation{
				Seating: SeatingIndoor,
				Message: fmt.Sprintf("Clear skies but a bit cool (%.0f°C), so indoor seating might be more comfortable.", temp),
			}
		default:
			return Recommendation{
				Seating: SeatingOutdoor,
				Message: fmt.Sprintf("Clear skies and %.0f°C, perfect weather for outdoor seating.", temp),
			}
		}
	case strings.Contains(condition, "cloud"):
		if temp >= 18 && temp <= 28 {
			return Recommendation{
				Seating: SeatingOutdoor,
				Message: fmt.Sprintf("Cloudy but pleasant at %.0f°C, outdoor seating should be comfortable.", temp),
			}
		}
		return Recommendation{
			Seating: SeatingIndoor,
			Message: fmt.Sprintf("Cloudy at %.0f°C, indoor seating is recommended.", temp),
		}
	}

	return Recommendation{
		Seating: SeatingIndoor,
		Message: "Indoor seating is recommended for your comfort.",
	}
}

// WithRecommendation returns the observation with its recommendation filled in
func WithRecommendation(obs *WeatherObservation) *WeatherObservation {
	if obs == nil {
		return nil
	}
	rec := Recommend(obs)
	obs.Recommendation = &rec
	return obs
}
