package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"

	"github.com/sirupsen/logrus"
)

const defaultWeatherCacheTTL = 30 * time.Minute

// WeatherService struct - looks up weather for a booking date with caching and fallbacks
type WeatherService struct {
	provider output.WeatherProvider
	cache    output.WeatherCache
	location string
	cacheTTL time.Duration
}

// NewWeatherService func - cache may be nil to disable caching
func NewWeatherService(provider output.WeatherProvider, cache output.WeatherCache, location string, cacheTTL time.Duration) *WeatherService {
	if cacheTTL <= 0 {
		cacheTTL = defaultWeatherCacheTTL
	}
	return &WeatherService{
		provider: provider,
		cache:    cache,
		location: location,
		cacheTTL: cacheTTL,
	}
}

// ObservationFor returns the weather for the given date with its seating recommendation.
// Dates beyond the forecast horizon fall back to current conditions. Any other
// provider failure is reported as domain.ErrWeatherUnavailable.
func (s *WeatherService) ObservationFor(ctx context.Context, date time.Time) (*domain.WeatherObservation, error) {
	key := s.cacheKey(date)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	obs, err := s.provider.ForecastFor(ctx, date, s.location)
	if errors.Is(err, domain.ErrForecastOutOfRange) {
		logrus.Debugf("No forecast for %s, using current conditions", date.Format(domain.OnlyDate))
		obs, err = s.provider.Current(ctx, s.location)
	}
	if err != nil {
		if errors.Is(err, domain.ErrWeatherUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrWeatherUnavailable, err)
	}
	if obs == nil {
		return nil, fmt.Errorf("%w: empty observation", domain.ErrWeatherUnavailable)
	}

	obs = domain.WithRecommendation(obs)
	s.toCache(ctx, key, obs)
	return obs, nil
}

// ObservationOrDefault never fails: an unavailable provider yields the default observation
func (s *WeatherService) ObservationOrDefault(ctx context.Context, date time.Time) *domain.WeatherObservation {
	obs, err := s.ObservationFor(ctx, date)
	if err != nil {
		logrus.Warnf("Weather lookup for %s failed, using default: %v", date.Format(domain.OnlyDate), err)
		return domain.DefaultWeather()
	}
	return obs
}

// CurrentOrNil returns present conditions, or nil when they cannot be fetched
func (s *WeatherService) CurrentOrNil(ctx context.Context) *domain.WeatherObservation {
	obs, err := s.provider.Current(ctx, s.location)
	if err != nil || obs == nil {
		logrus.Debugf("Current weather unavailable: %v", err)
		return nil
	}
	return domain.WithRecommendation(obs)
}

func (s *WeatherService) cacheKey(date time.Time) string {
	return strings.ToLower(strings.ReplaceAll(s.location, " ", "")) + ":" + date.Format(domain.OnlyDate)
}

func (s *WeatherService) fromCache(ctx context.Context, key string) *domain.WeatherObservation {
	if s.cache == nil {
		return nil
	}
	obs, err := s.cache.Get(ctx, key)
	if err != nil {
		logrus.Warnf("Weather cache read failed for %s: %v", key, err)
		return nil
	}
	return obs
}

func (s *WeatherService) toCache(ctx context.Context, key string, obs *domain.WeatherObservation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, obs, s.cacheTTL); err != nil {
		logrus.Warnf("Weather cache write failed for %s: %v", key, err)
	}
}
