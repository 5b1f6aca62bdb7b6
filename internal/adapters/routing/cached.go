package routing

import (
	"context"
	"fmt"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"
	"walking-route-service/internal/ports"

	"go.uber.org/zap"
)

// CachedRouter wraps a RoutingProvider with a RouteCache. Failures are not cached.
type CachedRouter struct {
	inner   ports.RoutingProvider
	cache   ports.RouteCache
	metrics *obs.Metrics
	log     *zap.Logger
}

func NewCachedRouter(inner ports.RoutingProvider, cache ports.RouteCache, metrics *obs.Metrics, log *zap.Logger) *CachedRouter {
	return &CachedRouter{inner: inner, cache: cache, metrics: metrics, log: log}
}

// RouteKey rounds both endpoints to 6 decimals (about 0.1m).
func RouteKey(from, to domain.Coordinate) string {
	return fmt.Sprintf("%.6f,%.6f;%.6f,%.6f", from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}

func (c *CachedRouter) Route(ctx context.Context, from, to domain.Coordinate) (domain.RouteGeometry, error) {
	key := RouteKey(from, to)

	cached, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.record("error")
		c.log.Warn("route cache get failed", zap.String("key", key), zap.Error(err))
	case ok && len(cached) > 0:
		c.record("hit")
		return cached, nil
	default:
		c.record("miss")
	}

	route, err := c.inner.Route(ctx, from, to)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, route); err != nil {
		c.log.Warn("route cache put failed", zap.String("key", key), zap.Error(err))
	}
	return route, nil
}

func (c *CachedRouter) record(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues("route", result).Inc()
	}
}
