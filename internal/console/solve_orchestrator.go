package console

import (
	"context"
	"delivery-route-console/internal/ports"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrSolveInProgress rejects a solve issued while another is still outstanding.
var ErrSolveInProgress = errors.New("a solve is already in progress")

// SolveOrchestrator runs the solve cycle. It reads nothing from the entity
// cache; callers pass the fleet selection in.
type SolveOrchestrator struct {
	store ports.RemoteStore
	maps  *MapSync

	inFlight atomic.Bool
}

func NewSolveOrchestrator(store ports.RemoteStore, maps *MapSync) *SolveOrchestrator {
	return &SolveOrchestrator{store: store, maps: maps}
}

// Solve requests a plan and draws it. On any failure the routes already on
// the map are left untouched.
func (s *SolveOrchestrator) Solve(ctx context.Context, forceAll bool, vehicleIDs []int64) ([]RouteCard, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSolveInProgress
	}
	defer s.inFlight.Store(false)

	routes, err := s.store.Solve(ctx, ports.SolveRequest{
		ForceAll:   forceAll,
		VehicleIDs: append([]int64(nil), vehicleIDs...),
	})
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	return s.maps.RenderRoutes(routes), nil
}

func (s *SolveOrchestrator) InFlight() bool { return s.inFlight.Load() }
