package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"restaurant-concierge/internal/domain"
)

// newTestCache connects to REDIS_TEST_ADDR; the tests are skipped when it is unset
func newTestCache(t *testing.T) *WeatherCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := NewClient(context.Background(), addr, "", 0)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewWeatherCache(client)
}

func TestWeatherCacheMissReturnsNil(t *testing.T) {
	cache := newTestCache(t)

	observation, err := cache.Get(context.Background(), "test:missing:"+time.Now().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("expected no error on miss, got %v", err)
	}
	if observation != nil {
		t.Errorf("expected nil observation on miss, got %+v", observation)
	}
}

func TestWeatherCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	key := "test:chennai:2025-12-05"

	stored := domain.WithRecommendation(&domain.WeatherObservation{
		Condition:   "Clear",
		Temperature: 27,
		Description: "clear sky",
		Humidity:    60,
	})
	if err := cache.Set(ctx, key, stored, time.Minute); err != nil {
		t.Fatalf("expected no error on set, got %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("expected no error on get, got %v", err)
	}
	if got == nil || got.Condition != "Clear" || got.Temperature != 27 {
		t.Fatalf("unexpected observation: %+v", got)
	}
	if got.Recommendation == nil || got.Recommendation.Seating != domain.SeatingOutdoor {
		t.Errorf("expected outdoor recommendation to survive the round trip, got %+v", got.Recommendation)
	}
}
