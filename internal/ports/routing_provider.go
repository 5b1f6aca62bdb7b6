package ports

import (
	"context"
	"walking-route-service/internal/domain"
)

// Contract for fetching a walking path between two points.
type RoutingProvider interface {
	// Return the path in lat/lon orientation. Implementations report a missing
	// path as domain.ErrRouteUnavailable.
	Route(ctx context.Context, from, to domain.Coordinate) (domain.RouteGeometry, error)
}

type RouteCache interface {
	Get(ctx context.Context, key string) (domain.RouteGeometry, bool, error)
	Put(ctx context.Context, key string, route domain.RouteGeometry) error
}
