package dto

import "delivery-route-console/internal/domain"

type SolveRequest struct {
	ForceAll bool `json:"force_all"`
	// Vehicle ids to use; empty means every active vehicle.
	Vehicles []int64 `json:"vehicles"`
}

type RouteVehicleResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"`
}

type RouteResponse struct {
	Vehicle RouteVehicleResponse `json:"vehicle"`
	Stops   []string             `json:"stops"`
	// Segments of [lat, lon] pairs.
	Geometry      [][][2]float64 `json:"geometry"`
	DistanceKm    float64        `json:"distance_km"`
	TravelTimeMin float64        `json:"travel_time_min"`
}

type SolveResponse struct {
	Routes []RouteResponse `json:"routes"`
}

func NewSolveResponse(routes []domain.Route) SolveResponse {
	res := SolveResponse{Routes: make([]RouteResponse, 0, len(routes))}
	for _, r := range routes {
		geometry := make([][][2]float64, 0, len(r.Geometry))
		for _, seg := range r.Geometry {
			points := make([][2]float64, 0, len(seg))
			for _, c := range seg {
				points = append(points, c.LatLng())
			}
			geometry = append(geometry, points)
		}

		stops := r.Stops
		if stops == nil {
			stops = []string{}
		}

		res.Routes = append(res.Routes, RouteResponse{
			Vehicle: RouteVehicleResponse{
				ID:       r.Vehicle.ID,
				Name:     r.Vehicle.Name,
				Capacity: r.Vehicle.Capacity,
			},
			Stops:         stops,
			Geometry:      geometry,
			DistanceKm:    r.DistanceKm,
			TravelTimeMin: r.TravelTimeMin,
		})
	}
	return res
}

type HealthResponse struct {
	Status      string `json:"status"`
	GraphLoaded bool   `json:"graph_loaded"`
}
