package geocoding

import (
	"context"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"
	"walking-route-service/internal/ports"

	"go.uber.org/zap"
)

// CachedGeocoder wraps a Geocoder with a GeocodeCache keyed by normalized address.
// Cache failures are logged and fall through to the provider.
type CachedGeocoder struct {
	inner   ports.Geocoder
	cache   ports.GeocodeCache
	metrics *obs.Metrics
	log     *zap.Logger
}

func NewCachedGeocoder(inner ports.Geocoder, cache ports.GeocodeCache, metrics *obs.Metrics, log *zap.Logger) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: cache, metrics: metrics, log: log}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) ([]domain.Coordinate, error) {
	key := Normalize(address)

	cached, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.record("error")
		c.log.Warn("geocode cache get failed", zap.String("key", key), zap.Error(err))
	case ok:
		c.record("hit")
		return cached, nil
	default:
		c.record("miss")
	}

	out, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	// Only non-empty results are stored so a "not found" can be retried later.
	if len(out) > 0 {
		if err := c.cache.Put(ctx, key, out); err != nil {
			c.log.Warn("geocode cache put failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (c *CachedGeocoder) record(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues("geocode", result).Inc()
	}
}
