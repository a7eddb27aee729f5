package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for weather observations
	weatherKeyPrefix = "weather:"
	// Default TTL for observations (30 minutes)
	defaultTTL = 30 * time.Minute
)

// Compile-time check to ensure WeatherCache implements output.WeatherCache
var _ output.WeatherCache = (*WeatherCache)(nil)

// WeatherCache stores weather observations as JSON values with a TTL
type WeatherCache struct {
	client *redis.Client
}

// NewWeatherCache creates a Redis-backed weather cache
func NewWeatherCache(client *redis.Client) *WeatherCache {
	return &WeatherCache{client: client}
}

// NewClient opens a client and verifies the server answers
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Get returns nil if the key is not cached (not an error)
func (c *WeatherCache) Get(ctx context.Context, key string) (*domain.WeatherObservation, error) {
	val, err := c.client.Get(ctx, weatherKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var observation domain.WeatherObservation
	if err := json.Unmarshal([]byte(val), &observation); err != nil {
		return nil, err
	}
	return &observation, nil
}

// Set stores the observation, replacing any previous value
func (c *WeatherCache) Set(ctx context.Context, key string, observation *domain.WeatherObservation, ttl time.Duration) error {
	if observation == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	val, err := json.Marshal(observation)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, weatherKeyPrefix+key, val, ttl).Err()
}
