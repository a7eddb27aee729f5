package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"restaurant-concierge/configs"
	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure OpenWeatherAdapter implements WeatherProvider interface
var _ output.WeatherProvider = (*OpenWeatherAdapter)(nil)

// forecastHour is the local hour whose forecast entry represents a whole day
const forecastHour = 12

// OpenWeatherAdapter struct - Output adapter for the OpenWeatherMap 2.5 API
type OpenWeatherAdapter struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewOpenWeatherAdapter func - Creates new OpenWeatherMap adapter
func NewOpenWeatherAdapter(config configs.Weather) *OpenWeatherAdapter {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 10 * time.Second
	}

	if config.APIKey == "" {
		logrus.Warn("OpenWeatherMap API key is not configured, weather lookups will use defaults")
	}

	return &OpenWeatherAdapter{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     config.APIKey,
	}
}

// ForecastFor returns the 3-hourly forecast entry closest to midday on the given date,
// in the location's own timezone.
func (a *OpenWeatherAdapter) ForecastFor(ctx context.Context, date time.Time, location string) (*domain.WeatherObservation, error) {
	var resp forecastResponse
	if err := a.get(ctx, "/data/2.5/forecast", location, &resp); err != nil {
		return nil, err
	}

	entry, ok := resp.closestTo(date, forecastHour)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrForecastOutOfRange, date.Format(domain.OnlyDate))
	}
	return entry.observation(), nil
}

// Current returns present conditions at the location
func (a *OpenWeatherAdapter) Current(ctx context.Context, location string) (*domain.WeatherObservation, error) {
	var resp conditions
	if err := a.get(ctx, "/data/2.5/weather", location, &resp); err != nil {
		return nil, err
	}
	return resp.observation(), nil
}

func (a *OpenWeatherAdapter) get(ctx context.Context, path, location string, out any) error {
	if a.apiKey == "" {
		return fmt.Errorf("%w: api key not configured", domain.ErrWeatherUnavailable)
	}

	query := url.Values{}
	query.Set("q", location)
	query.Set("appid", a.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create weather request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d - %s", domain.ErrWeatherUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", domain.ErrWeatherUnavailable, err)
	}
	return nil
}

// API response structures

type conditions struct {
	Dt      int64 `json:"dt"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (c conditions) observation() *domain.WeatherObservation {
	obs := &domain.WeatherObservation{
		Condition:   domain.DefaultWeatherCondition,
		Temperature: c.Main.Temp,
		Humidity:    c.Main.Humidity,
		WindSpeed:   c.Wind.Speed,
	}
	if len(c.Weather) > 0 {
		obs.Condition = c.Weather[0].Main
		obs.Description = c.Weather[0].Description
	}
	return obs
}

type forecastResponse struct {
	List []conditions `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

// closestTo picks the entry on the target calendar date nearest to the given local hour
func (f forecastResponse) closestTo(date time.Time, hour int) (conditions, bool) {
	zone := time.FixedZone(f.City.Name, f.City.Timezone)
	target := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, zone)

	var (
		best     conditions
		bestDiff time.Duration
		found    bool
	)
	for _, entry := range f.List {
		at := time.Unix(entry.Dt, 0).In(zone)
		if !domain.SameDay(at, target) {
			continue
		}
		diff := at.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if !found || diff < bestDiff {
			best, bestDiff, found = entry, diff, true
		}
	}
	return best, found
}
