package ports

import (
	"context"
	"delivery-route-console/internal/domain"
)

// One order as handed to the solver.
type SolveStop struct {
	ID          int64
	ExternalID  string
	Volume      float64
	WindowStart float64
	WindowEnd   *float64
	Location    domain.Coordinates
}

type SolveVehicle struct {
	ID       int64
	Name     string
	Capacity float64
}

// Complete problem for the external routing backend.
type SolveProblem struct {
	Depot    domain.Coordinates
	Stops    []SolveStop
	Vehicles []SolveVehicle
	ForceAll bool
}

// Contract for the external optimization backend.
type Solver interface {
	Solve(ctx context.Context, p SolveProblem) ([]domain.Route, error)
	// Report whether the street graph is loaded and the solver can serve requests.
	Ready(ctx context.Context) bool
}

// SolverRejection carries the backend's own reason for refusing a problem.
type SolverRejection struct {
	Msg string
}

func (e *SolverRejection) Error() string { return "solver rejected problem: " + e.Msg }
