package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"walking-route-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	geocodePrefix = "geocode:"
	routePrefix   = "route:"
)

// redisJSON stores JSON values under a prefix with a fixed TTL.
type redisJSON struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func (r redisJSON) get(ctx context.Context, key string, v any) (bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s%s: %w", r.prefix, key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("redis decode %s%s: %w", r.prefix, key, err)
	}
	return true, nil
}

func (r redisJSON) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis encode %s%s: %w", r.prefix, key, err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s%s: %w", r.prefix, key, err)
	}
	return nil
}

// RedisGeocodeCache caches geocode candidates in Redis with a TTL.
type RedisGeocodeCache struct {
	store redisJSON
}

func NewRedisGeocodeCache(rdb redis.UniversalClient, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{store: redisJSON{rdb: rdb, prefix: geocodePrefix, ttl: ttl}}
}

func (c *RedisGeocodeCache) Get(ctx context.Context, key string) ([]domain.Coordinate, bool, error) {
	var out []domain.Coordinate
	ok, err := c.store.get(ctx, key, &out)
	if err != nil || !ok {
		return nil, false, err
	}
	return out, len(out) > 0, nil
}

func (c *RedisGeocodeCache) Put(ctx context.Context, key string, candidates []domain.Coordinate) error {
	if len(candidates) == 0 {
		return nil
	}
	return c.store.put(ctx, key, candidates)
}

// RedisRouteCache caches route geometries in Redis with a TTL.
type RedisRouteCache struct {
	store redisJSON
}

func NewRedisRouteCache(rdb redis.UniversalClient, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{store: redisJSON{rdb: rdb, prefix: routePrefix, ttl: ttl}}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (domain.RouteGeometry, bool, error) {
	var out domain.RouteGeometry
	ok, err := c.store.get(ctx, key, &out)
	if err != nil || !ok {
		return nil, false, err
	}
	return out, len(out) > 0, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, route domain.RouteGeometry) error {
	if len(route) == 0 {
		return nil
	}
	return c.store.put(ctx, key, route)
}
