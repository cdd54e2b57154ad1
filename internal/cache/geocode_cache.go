package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/sigapbencana/rambu_api/internal/models"
)

// GeocodeCache stores resolved administrative regions per coordinate so
// repeated clicks on the same spot skip the point-in-polygon work.
type GeocodeCache struct {
	redis     *RedisClient
	ttl       time.Duration
	precision int
}

// NewGeocodeCache creates a GeocodeCache with the given TTL and coordinate
// rounding precision (decimal places).
func NewGeocodeCache(redis *RedisClient, ttl time.Duration, precision int) *GeocodeCache {
	if precision <= 0 {
		precision = 5
	}
	return &GeocodeCache{redis: redis, ttl: ttl, precision: precision}
}

// key rounds the coordinate so nearby clicks share one entry.
func (c *GeocodeCache) key(lat, lon float64) string {
	p := math.Pow10(c.precision)
	return fmt.Sprintf("geo:%d:%.0f:%.0f", c.precision, math.Round(lat*p), math.Round(lon*p))
}

// Get returns the cached result for a coordinate, or nil on miss.
func (c *GeocodeCache) Get(ctx context.Context, lat, lon float64) (*models.GeocodeResult, error) {
	raw, err := c.redis.Get(ctx, c.key(lat, lon))
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}
	var result models.GeocodeResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached geocode result: %w", err)
	}
	return &result, nil
}

// Set stores a resolved result for a coordinate.
func (c *GeocodeCache) Set(ctx context.Context, lat, lon float64, result *models.GeocodeResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal geocode result: %w", err)
	}
	return c.redis.Set(ctx, c.key(lat, lon), string(raw), c.ttl)
}
