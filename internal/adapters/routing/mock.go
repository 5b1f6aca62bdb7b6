package routing

import (
	"context"
	"sync"
	"walking-route-service/internal/domain"
)

// MockRouter returns a fixed geometry or error and records the calls it receives.
type MockRouter struct {
	Geometry domain.RouteGeometry
	Err      error

	mu    sync.Mutex
	calls [][2]domain.Coordinate
}

func NewMockRouter(geometry domain.RouteGeometry, err error) *MockRouter {
	return &MockRouter{Geometry: geometry, Err: err}
}

func (m *MockRouter) Route(ctx context.Context, from, to domain.Coordinate) (domain.RouteGeometry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, [2]domain.Coordinate{from, to})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Geometry.Clone(), nil
}

// Calls returns the (from, to) pairs requested so far.
func (m *MockRouter) Calls() [][2]domain.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][2]domain.Coordinate(nil), m.calls...)
}
