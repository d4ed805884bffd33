package ports

import (
	"context"
	"delivery-route-console/internal/domain"
)

// Partial vehicle update; nil fields are left unchanged.
type VehicleUpdate struct {
	Name     *string
	Capacity *float64
	Active   *bool
}

// Partial order update; nil fields are left unchanged. Window fields use
// SetWindowStart/SetWindowEnd so an explicit null can clear a bound.
type OrderUpdate struct {
	ExternalID     *string
	Address        *string
	Location       *domain.Coordinates
	Volume         *float64
	SetWindowStart bool
	WindowStart    *float64
	SetWindowEnd   bool
	WindowEnd      *float64
}

// Port: durable storage for the planner API.
// Get/Update/Delete methods return ErrNotFound for unknown ids.
type PlanningRepository interface {
	GetDepot(ctx context.Context) (*domain.Depot, error)
	SaveDepot(ctx context.Context, d domain.Depot) (domain.Depot, error)

	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	CreateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, id int64, u VehicleUpdate) (domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]domain.Order, error)
	CreateOrders(ctx context.Context, orders []domain.Order) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, id int64, u OrderUpdate) (domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}
