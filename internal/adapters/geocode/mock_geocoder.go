package geocode

import (
	"context"
	"delivery-route-console/internal/domain"
	"errors"
	"sync"
)

// MockGeocoder resolves addresses from a fixed table and counts lookups.
type MockGeocoder struct {
	mu    sync.Mutex
	m     map[string]domain.Coordinates
	calls int
}

func NewMockGeocoder(table map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(table))
	for addr, c := range table {
		m[normalize(addr)] = c
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++

	c, ok := g.m[normalize(address)]
	if !ok {
		return domain.Coordinates{}, ErrNoMatch
	}
	return c, nil
}

func (g *MockGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// ErrUnavailable is returned by Unavailable for every address.
var ErrUnavailable = errors.New("geocoding is not configured")

// Unavailable is used when no geocoding key is configured. Orders must then
// carry coordinates.
type Unavailable struct{}

func (Unavailable) Geocode(context.Context, string) (domain.Coordinates, error) {
	return domain.Coordinates{}, ErrUnavailable
}
