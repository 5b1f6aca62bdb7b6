package geocoding

import (
	"context"
	"sync"
	"walking-route-service/internal/domain"
)

// MockGeocoder serves fixed candidates keyed by normalized address.
// Unknown addresses yield no candidates.
type MockGeocoder struct {
	mu    sync.Mutex
	m     map[string][]domain.Coordinate
	Err   error
	calls int
}

func NewMockGeocoder(results map[string][]domain.Coordinate) *MockGeocoder {
	m := make(map[string][]domain.Coordinate, len(results))
	for addr, cands := range results {
		m[Normalize(addr)] = cands
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) ([]domain.Coordinate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.Err != nil {
		return nil, g.Err
	}
	return append([]domain.Coordinate(nil), g.m[Normalize(address)]...), nil
}

// Calls reports how many lookups reached the mock.
func (g *MockGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
