package solver

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"math"
)

const (
	earthRadiusKm = 6371.0
	// Average urban speed used to turn straight-line distance into travel time.
	staticSpeedKmh = 30.0
)

// StaticSolver plans without a routing backend: stops are dealt to vehicles
// in order, first fit by remaining capacity, and each route is drawn as
// straight lines depot -> stops -> depot. Stops that fit nowhere are dropped
// unless ForceAll is set, in which case they go to the least loaded vehicle.
//
// Used for local development and tests; it makes no attempt to optimize.
type StaticSolver struct{}

var _ ports.Solver = StaticSolver{}

func (StaticSolver) Ready(context.Context) bool { return true }

func (StaticSolver) Solve(ctx context.Context, p ports.SolveProblem) ([]domain.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	load := make([]float64, len(p.Vehicles))
	assigned := make([][]ports.SolveStop, len(p.Vehicles))

	for _, st := range p.Stops {
		slot := -1
		for i, v := range p.Vehicles {
			if load[i]+st.Volume <= v.Capacity {
				slot = i
				break
			}
		}
		if slot < 0 && p.ForceAll && len(p.Vehicles) > 0 {
			slot = 0
			for i := range load {
				if load[i] < load[slot] {
					slot = i
				}
			}
		}
		if slot < 0 {
			continue
		}
		load[slot] += st.Volume
		assigned[slot] = append(assigned[slot], st)
	}

	routes := make([]domain.Route, 0, len(p.Vehicles))
	for i, v := range p.Vehicles {
		if len(assigned[i]) == 0 {
			continue
		}

		path := domain.Segment{p.Depot}
		stops := make([]string, 0, len(assigned[i]))
		for _, st := range assigned[i] {
			path = append(path, st.Location)
			stops = append(stops, st.ExternalID)
		}
		path = append(path, p.Depot)

		var km float64
		for j := 1; j < len(path); j++ {
			km += haversineKm(path[j-1], path[j])
		}

		routes = append(routes, domain.Route{
			Vehicle:       domain.RouteVehicle{ID: v.ID, Name: v.Name, Capacity: v.Capacity},
			Stops:         stops,
			Geometry:      []domain.Segment{path},
			DistanceKm:    km,
			TravelTimeMin: km / staticSpeedKmh * 60,
		})
	}

	return routes, nil
}

func haversineKm(a, b domain.Coordinates) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
