package dto

import "delivery-route-console/internal/domain"

type CreateVehicleRequest struct {
	Name     string   `json:"name"`
	Capacity *float64 `json:"capacity"`
}

// UpdateVehicleRequest is a partial update; absent fields are left unchanged.
type UpdateVehicleRequest struct {
	Name     *string  `json:"name"`
	Capacity *float64 `json:"capacity"`
	Active   *bool    `json:"active"`
}

type VehicleResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Capacity     float64 `json:"capacity"`
	Active       bool    `json:"active"`
	DefaultReady bool    `json:"default_ready"`
}

func NewVehicleResponse(v domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:           v.ID,
		Name:         v.Name,
		Capacity:     v.Capacity,
		Active:       v.Active,
		DefaultReady: v.DefaultReady,
	}
}

func NewVehicleList(vs []domain.Vehicle) []VehicleResponse {
	out := make([]VehicleResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, NewVehicleResponse(v))
	}
	return out
}
