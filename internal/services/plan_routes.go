package services

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/metrics"
	"delivery-route-console/internal/ports"
	"errors"
	"fmt"
	"time"
)

type PlanRoutesRequest struct {
	ForceAll bool
	// VehicleIDs narrows the active fleet. Empty means every active vehicle.
	VehicleIDs []int64
}

// PlanRoutes validates the stored depot, orders and fleet, then hands the
// problem to the external solver.
func PlanRoutes(
	ctx context.Context,
	req PlanRoutesRequest,
	repo ports.PlanningRepository,
	solver ports.Solver,
) ([]domain.Route, error) {
	depot, err := repo.GetDepot(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan routes: get depot: %w", err)
	}
	if depot == nil {
		return nil, &PlanningError{Msg: "depot is required"}
	}

	orders, err := repo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan routes: list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, &PlanningError{Msg: "no orders"}
	}

	vehicles, err := repo.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan routes: list vehicles: %w", err)
	}

	active := make([]domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Active {
			active = append(active, v)
		}
	}
	if len(active) == 0 {
		return nil, &PlanningError{Msg: "no active vehicles"}
	}

	if len(req.VehicleIDs) > 0 {
		selected := make(map[int64]struct{}, len(req.VehicleIDs))
		for _, id := range req.VehicleIDs {
			selected[id] = struct{}{}
		}
		kept := active[:0]
		for _, v := range active {
			if _, ok := selected[v.ID]; ok {
				kept = append(kept, v)
			}
		}
		active = kept
	}
	if len(active) == 0 {
		return nil, &PlanningError{Msg: "no selected vehicles"}
	}

	problem := ports.SolveProblem{
		Depot:    depot.Coordinates(),
		Stops:    make([]ports.SolveStop, 0, len(orders)),
		Vehicles: make([]ports.SolveVehicle, 0, len(active)),
		ForceAll: req.ForceAll,
	}

	for _, o := range orders {
		loc, ok := o.Coordinates()
		if !ok {
			return nil, &PlanningError{Msg: fmt.Sprintf("order %s has no coordinates", o.ExternalID)}
		}
		stop := ports.SolveStop{
			ID:         o.ID,
			ExternalID: o.ExternalID,
			Volume:     o.Volume,
			WindowEnd:  o.WindowEnd,
			Location:   loc,
		}
		if o.WindowStart != nil {
			stop.WindowStart = *o.WindowStart
		}
		problem.Stops = append(problem.Stops, stop)
	}

	for _, v := range active {
		problem.Vehicles = append(problem.Vehicles, ports.SolveVehicle{ID: v.ID, Name: v.Name, Capacity: v.Capacity})
	}

	start := time.Now()
	routes, err := solver.Solve(ctx, problem)
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var rej *ports.SolverRejection
		if errors.As(err, &rej) {
			return nil, &PlanningError{Msg: rej.Msg}
		}
		return nil, fmt.Errorf("plan routes: solve: %w", err)
	}

	return routes, nil
}
