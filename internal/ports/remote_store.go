package ports

import (
	"context"
	"delivery-route-console/internal/domain"
	"io"
)

// Readiness of the routing backend.
type Health struct {
	GraphLoaded bool
}

// Payload for saving the depot.
type DepotInput struct {
	Latitude  float64
	Longitude float64
	Address   *string
}

// Payload for registering a vehicle.
type VehicleInput struct {
	Name     string
	Capacity float64
}

// Payload for registering an order. Nil coordinates ask the backend to
// resolve them from Address.
type OrderInput struct {
	ExternalID  string
	Address     string
	Latitude    *float64
	Longitude   *float64
	Volume      float64
	WindowStart *float64
	WindowEnd   *float64
}

// Fleet selection for one solve.
type SolveRequest struct {
	ForceAll   bool
	VehicleIDs []int64
}

// Port: the console's view of the planner backend.
//
// Every method is a single network round trip. Implementations keep no state,
// never retry, and report failures as *NetworkError, *StatusError, *AppError or
// *DecodeError.
type RemoteStore interface {
	Health(ctx context.Context) (Health, error)

	// Return the stored depot, or nil when none has been saved yet.
	FetchDepot(ctx context.Context) (*domain.Depot, error)
	SaveDepot(ctx context.Context, in DepotInput) (domain.Depot, error)

	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	AddVehicle(ctx context.Context, in VehicleInput) (domain.Vehicle, error)

	ListOrders(ctx context.Context) ([]domain.Order, error)
	AddOrder(ctx context.Context, in OrderInput) (domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	// Upload a bulk order file. The content is opaque to the console.
	ImportOrders(ctx context.Context, filename string, content io.Reader) error

	Solve(ctx context.Context, req SolveRequest) ([]domain.Route, error)
}
