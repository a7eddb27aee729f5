package domain

// Seating is the seating area suggested for the observed weather
type Seating string

const (
	SeatingIndoor  Seating = "indoor"
	SeatingOutdoor Seating = "outdoor"
)

// Default observation values used when the weather provider is unavailable
const (
	DefaultWeatherCondition   = "unknown"
	DefaultWeatherTemperature = 25.0
)

// Recommendation is the seating suggestion derived from a weather observation
type Recommendation struct {
	Seating Seating `json:"seating"`
	Message string  `json:"message"`
}

// WeatherObservation is a forecast or current-conditions reading for the booking location
type WeatherObservation struct {
	Condition      string          `json:"condition"`
	Temperature    float64         `json:"temperature"`
	Description    string          `json:"description"`
	Humidity       int             `json:"humidity"`
	WindSpeed      float64         `json:"windSpeed"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// DefaultWeather is substituted when no observation can be fetched, so the
// dialogue never blocks on the weather provider.
func DefaultWeather() *WeatherObservation {
	return &WeatherObservation{
		Condition:   DefaultWeatherCondition,
		Temperature: DefaultWeatherTemperature,
		Description: "weather data unavailable",
		Recommendation: &Recommendation{
			Seating: SeatingIndoor,
			Message: "We couldn't check the weather, so indoor seating is the safe choice.",
		},
	}
}
