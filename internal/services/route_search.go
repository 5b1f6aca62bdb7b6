package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// RouteSearchWorkflow resolves an address to a destination and, when an origin
// is known, fetches a walking route to it. One instance holds the view state of
// one user; searches on an instance are single-flight.
type RouteSearchWorkflow struct {
	geocoder ports.Geocoder
	router   ports.RoutingProvider
	log      *zap.Logger

	inflight *semaphore.Weighted

	mu    sync.RWMutex
	state domain.SearchState
}

func NewRouteSearchWorkflow(geocoder ports.Geocoder, router ports.RoutingProvider, log *zap.Logger) *RouteSearchWorkflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &RouteSearchWorkflow{
		geocoder: geocoder,
		router:   router,
		log:      log,
		inflight: semaphore.NewWeighted(1),
	}
}

// SetOrigin records the device position. Last write wins. The selected
// location is initialized to the origin if nothing has been selected yet.
func (w *RouteSearchWorkflow) SetOrigin(point domain.Coordinate) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Origin = point.Ptr()
	if w.state.SelectedLocation == nil {
		w.state.SelectedLocation = point.Ptr()
	}
}

// Search geocodes address and, if an origin is known, routes to the first candidate.
//
// A blank address returns the current state without calling any provider.
// Geocoder failures and empty results return domain.ErrAddressNotFound with the
// state untouched. Routing failures do not fail the search: the route is cleared
// and the result carries domain.ErrRouteUnavailable as Warning. A call made
// while another search is outstanding returns domain.ErrSearchInProgress.
func (w *RouteSearchWorkflow) Search(ctx context.Context, address string) (domain.SearchResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return w.currentResult(), nil
	}

	if !w.inflight.TryAcquire(1) {
		return domain.SearchResult{}, domain.ErrSearchInProgress
	}
	defer w.inflight.Release(1)

	// The origin is read once; a SetOrigin during the search applies to the next one.
	w.mu.RLock()
	origin := w.state.Origin
	if origin != nil {
		origin = origin.Ptr()
	}
	w.mu.RUnlock()

	destination, err := w.geocode(ctx, address)
	if err != nil {
		return domain.SearchResult{}, err
	}

	var (
		route   domain.RouteGeometry
		warning error
	)
	if origin != nil {
		route, warning = w.route(ctx, *origin, destination)
	}

	w.mu.Lock()
	w.state.SelectedLocation = destination.Ptr()
	w.state.Route = route
	w.mu.Unlock()

	return domain.SearchResult{
		Location: destination.Ptr(),
		Route:    route.Clone(),
		Warning:  warning,
	}, nil
}

func (w *RouteSearchWorkflow) geocode(ctx context.Context, address string) (domain.Coordinate, error) {
	candidates, err := w.geocoder.Geocode(ctx, address)
	if err != nil {
		w.log.Info("geocode failed", zap.String("address", address), zap.Error(err))
		return domain.Coordinate{}, fmt.Errorf("search %q: %w: %w", address, domain.ErrAddressNotFound, err)
	}
	if len(candidates) == 0 {
		return domain.Coordinate{}, fmt.Errorf("search %q: %w", address, domain.ErrAddressNotFound)
	}
	return candidates[0], nil
}

func (w *RouteSearchWorkflow) route(ctx context.Context, origin, destination domain.Coordinate) (domain.RouteGeometry, error) {
	route, err := w.router.Route(ctx, origin, destination)
	if err == nil && len(route) == 0 {
		err = errors.New("empty geometry")
	}
	if err != nil {
		w.log.Info("route unavailable",
			zap.Stringer("from", origin),
			zap.Stringer("to", destination),
			zap.Error(err),
		)
		if errors.Is(err, domain.ErrRouteUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRouteUnavailable, err)
	}
	return route.Clone(), nil
}

func (w *RouteSearchWorkflow) currentResult() domain.SearchResult {
	s := w.State()
	return domain.SearchResult{Location: s.SelectedLocation, Route: s.Route}
}

// State returns a copy of the current view state.
func (w *RouteSearchWorkflow) State() domain.SearchState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.Clone()
}

func (w *RouteSearchWorkflow) Markers() []domain.Marker {
	return domain.Markers(w.State())
}

func (w *RouteSearchWorkflow) MapRegion(span float64) (domain.Region, bool) {
	return domain.MapRegion(w.State(), span)
}

// View builds the full display payload for the current state.
func (w *RouteSearchWorkflow) View(span float64) domain.MapView {
	return domain.BuildMapView(w.State(), span)
}
