package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

// SQLGeocodeCache is a Postgres-backed cache mapping a normalized address to
// its ordered geocode candidates. Rows are ordered by rank and entries older
// than TTL are treated as missing.
type SQLGeocodeCache struct {
	DB  *sql.DB
	TTL time.Duration
	log *zap.Logger
}

func NewSQLGeocodeCache(db *sql.DB, ttl time.Duration, log *zap.Logger) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, TTL: ttl, log: log}
}

// Get fetches cached candidates for the given address key.
func (s *SQLGeocodeCache) Get(ctx context.Context, key string) (_ []domain.Coordinate, _ bool, err error) {
	defer obs.Time(ctx, s.log, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}

	q := `
	SELECT lat, lon
	FROM geocode_cache
	WHERE address = $1
	  AND updated_at > now() - make_interval(secs => $2)
	ORDER BY rank;
	`

	rows, err := s.DB.QueryContext(ctx, q, key, s.TTL.Seconds())
	if err != nil {
		return nil, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	var out []domain.Coordinate
	for rows.Next() {
		var lat, lon float64
		if err := rows.Scan(&lat, &lon); err != nil {
			return nil, false, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out = append(out, domain.Coordinate{Latitude: lat, Longitude: lon})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, len(out) > 0, nil
}

// Put replaces the candidates stored for key in one transaction.
func (s *SQLGeocodeCache) Put(ctx context.Context, key string, candidates []domain.Coordinate) (err error) {
	defer obs.Time(ctx, s.log, "geocode.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert geocode cache: empty address key")
	}
	if len(candidates) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM geocode_cache WHERE address = $1;`, key); err != nil {
		return fmt.Errorf("insert geocode cache: clear %q: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (address, rank, lat, lon, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (address, rank) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		updated_at = EXCLUDED.updated_at;
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for rank, c := range candidates {
		if _, err := stmt.ExecContext(ctx, key, rank, c.Latitude, c.Longitude); err != nil {
			return fmt.Errorf("insert geocode cache address=%q rank=%d: %w", key, rank, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}
