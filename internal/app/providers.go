package app

import (
	"context"
	"database/sql"
	"fmt"
	"walking-route-service/internal/adapters/cache"
	"walking-route-service/internal/adapters/events"
	"walking-route-service/internal/adapters/geocoding"
	"walking-route-service/internal/adapters/httpclient"
	"walking-route-service/internal/adapters/routing"
	"walking-route-service/internal/config"
	"walking-route-service/internal/platform/db"
	"walking-route-service/internal/platform/obs"
	"walking-route-service/internal/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Providers is the assembled adapter stack behind the workflow ports.
type Providers struct {
	Geocoder  ports.Geocoder
	Router    ports.RoutingProvider
	Publisher ports.SearchEventPublisher

	closers []func() error
}

// Close releases every connection opened by BuildProviders, in reverse order.
func (p *Providers) Close() error {
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BuildProviders wires geocoder, router, caches and the event publisher from config.
// Redis takes precedence over Postgres for caching; with neither, providers are uncached.
func BuildProviders(ctx context.Context, cfg *config.Config, metrics *obs.Metrics, log *zap.Logger) (_ *Providers, err error) {
	p := &Providers{}
	defer func() {
		if err != nil {
			_ = p.Close()
		}
	}()

	geocoder, err := newGeocoder(cfg, metrics, log)
	if err != nil {
		return nil, err
	}

	routingClient := httpclient.New("osrm", cfg.RoutingTimeout, metrics)
	routingClient.MaxAttempts = cfg.ProviderMaxAttempts
	var router ports.RoutingProvider = routing.NewOSRMClient(routingClient, cfg.OSRMBaseURL, log.Named("osrm"))

	switch {
	case cfg.RedisAddr != "":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		p.closers = append(p.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("build providers: ping redis %s: %w", cfg.RedisAddr, err)
		}
		geocoder = geocoding.NewCachedGeocoder(geocoder, cache.NewRedisGeocodeCache(rdb, cfg.CacheTTL), metrics, log)
		router = routing.NewCachedRouter(router, cache.NewRedisRouteCache(rdb, cfg.CacheTTL), metrics, log)
		log.Info("provider cache enabled", zap.String("backend", "redis"))

	case cfg.DatabaseURL != "":
		sqlDB, err := openCacheDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, sqlDB.Close)
		geocoder = geocoding.NewCachedGeocoder(geocoder, cache.NewSQLGeocodeCache(sqlDB, cfg.CacheTTL, log), metrics, log)
		router = routing.NewCachedRouter(router, cache.NewSQLRouteCache(sqlDB, cfg.CacheTTL, log), metrics, log)
		log.Info("provider cache enabled", zap.String("backend", "postgres"))
	}

	var publisher ports.SearchEventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaSearchTopic, log.Named("kafka"))
		log.Info("search events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaSearchTopic))
	}
	p.closers = append(p.closers, publisher.Close)

	p.Geocoder = geocoder
	p.Router = router
	p.Publisher = publisher
	return p, nil
}

func newGeocoder(cfg *config.Config, metrics *obs.Metrics, log *zap.Logger) (ports.Geocoder, error) {
	client := httpclient.New(cfg.GeocoderProvider, cfg.GeocoderTimeout, metrics)
	client.MaxAttempts = cfg.ProviderMaxAttempts

	switch cfg.GeocoderProvider {
	case "nominatim":
		return geocoding.NewNominatimGeocoder(client, cfg.NominatimURL, cfg.NominatimUserAgent,
			cfg.NominatimRPS, cfg.GeocodeLimit, log.Named("nominatim")), nil
	case "ors":
		return geocoding.NewORSGeocoder(client, cfg.ORSAPIKey, cfg.ORSBaseURL,
			cfg.ORSBoundaryCountry, cfg.GeocodeLimit, log.Named("ors")), nil
	case "mapbox":
		return geocoding.NewMapboxGeocoder(client, cfg.MapboxToken, cfg.MapboxURL,
			cfg.GeocodeLimit, log.Named("mapbox")), nil
	default:
		return nil, fmt.Errorf("build providers: unknown geocoder %q", cfg.GeocoderProvider)
	}
}

func openCacheDB(ctx context.Context, url string) (*sql.DB, error) {
	sqlDB, err := db.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("build providers: %w", err)
	}
	if err := cache.InitSchema(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("build providers: %w", err)
	}
	return sqlDB, nil
}
