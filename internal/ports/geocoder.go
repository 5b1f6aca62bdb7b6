package ports

import (
	"context"
	"walking-route-service/internal/domain"
)

// Contract for resolving a free-form address into candidate coordinates.
type Geocoder interface {
	// Return candidates in provider order. An empty slice means no match.
	Geocode(ctx context.Context, address string) ([]domain.Coordinate, error)
}

// Persistent or shared storage for geocode results, keyed by normalized address.
type GeocodeCache interface {
	// Return cached candidates and whether the key was present.
	Get(ctx context.Context, key string) ([]domain.Coordinate, bool, error)
	Put(ctx context.Context, key string, candidates []domain.Coordinate) error
}
