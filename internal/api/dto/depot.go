package dto

import "delivery-route-console/internal/domain"

type DepotRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
}

type DepotResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address"`
}

func NewDepotResponse(d domain.Depot) DepotResponse {
	return DepotResponse{Latitude: d.Latitude, Longitude: d.Longitude, Address: d.Address}
}
