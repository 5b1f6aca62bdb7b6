package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

// SQLRouteCache stores route geometries as JSONB keyed by rounded endpoints.
// Entries older than TTL are treated as missing.
type SQLRouteCache struct {
	DB  *sql.DB
	TTL time.Duration
	log *zap.Logger
}

func NewSQLRouteCache(db *sql.DB, ttl time.Duration, log *zap.Logger) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl, log: log}
}

func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ domain.RouteGeometry, _ bool, err error) {
	defer obs.Time(ctx, s.log, "route.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	q := `
	SELECT geometry
	FROM route_cache
	WHERE route_key = $1
	  AND updated_at > now() - make_interval(secs => $2);
	`

	var raw []byte
	err = s.DB.QueryRowContext(ctx, q, key, s.TTL.Seconds()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	var route domain.RouteGeometry
	if err := json.Unmarshal(raw, &route); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode geometry: %w", err)
	}
	return route, true, nil
}

func (s *SQLRouteCache) Put(ctx context.Context, key string, route domain.RouteGeometry) (err error) {
	defer obs.Time(ctx, s.log, "route.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if len(route) == 0 {
		return nil
	}

	raw, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("insert route cache: encode geometry: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (route_key, geometry, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (route_key) DO UPDATE
	SET geometry = EXCLUDED.geometry,
		updated_at = EXCLUDED.updated_at;
	`, key, raw)
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}
