package console

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"io"
	"sync"
)

// fakeStore is an in-memory RemoteStore. Function fields override the
// default behaviour of individual calls.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	depot    *domain.Depot
	vehicles []domain.Vehicle
	orders   []domain.Order
	calls    []string

	listOrdersFn func(ctx context.Context) ([]domain.Order, error)
	saveDepotFn  func(in ports.DepotInput) (domain.Depot, error)
	solveFn      func(ctx context.Context, req ports.SolveRequest) ([]domain.Route, error)
}

var _ ports.RemoteStore = (*fakeStore)(nil)

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) Health(ctx context.Context) (ports.Health, error) {
	f.record("Health")
	return ports.Health{GraphLoaded: true}, nil
}

func (f *fakeStore) FetchDepot(ctx context.Context) (*domain.Depot, error) {
	f.record("FetchDepot")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.depot == nil {
		return nil, nil
	}
	d := *f.depot
	return &d, nil
}

func (f *fakeStore) SaveDepot(ctx context.Context, in ports.DepotInput) (domain.Depot, error) {
	f.record("SaveDepot")
	if f.saveDepotFn != nil {
		return f.saveDepotFn(in)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := domain.Depot{Latitude: in.Latitude, Longitude: in.Longitude, Address: in.Address}
	f.depot = &d
	return d, nil
}

func (f *fakeStore) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	f.record("ListVehicles")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Vehicle(nil), f.vehicles...), nil
}

func (f *fakeStore) AddVehicle(ctx context.Context, in ports.VehicleInput) (domain.Vehicle, error) {
	f.record("AddVehicle")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	v := domain.Vehicle{ID: f.nextID, Name: in.Name, Capacity: in.Capacity, Active: true}
	f.vehicles = append(f.vehicles, v)
	return v, nil
}

func (f *fakeStore) ListOrders(ctx context.Context) ([]domain.Order, error) {
	f.record("ListOrders")
	if f.listOrdersFn != nil {
		return f.listOrdersFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Order(nil), f.orders...), nil
}

func (f *fakeStore) AddOrder(ctx context.Context, in ports.OrderInput) (domain.Order, error) {
	f.record("AddOrder")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o := domain.Order{
		ID:          f.nextID,
		ExternalID:  in.ExternalID,
		Address:     in.Address,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Volume:      in.Volume,
		WindowStart: in.WindowStart,
		WindowEnd:   in.WindowEnd,
	}
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeStore) DeleteOrder(ctx context.Context, id int64) error {
	f.record("DeleteOrder")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, o := range f.orders {
		if o.ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return &ports.AppError{Op: "remote.DeleteOrder", Status: 404, Message: "order not found"}
}

func (f *fakeStore) ImportOrders(ctx context.Context, filename string, content io.Reader) error {
	f.record("ImportOrders")
	_, err := io.Copy(io.Discard, content)
	return err
}

func (f *fakeStore) Solve(ctx context.Context, req ports.SolveRequest) ([]domain.Route, error) {
	f.record("Solve")
	if f.solveFn != nil {
		return f.solveFn(ctx, req)
	}
	return nil, nil
}

func ptr[T any](v T) *T { return &v }

func located(id int64, ext string, lat, lon float64) domain.Order {
	return domain.Order{ID: id, ExternalID: ext, Latitude: ptr(lat), Longitude: ptr(lon), Volume: 1}
}

func route(name string, segments ...domain.Segment) domain.Route {
	return domain.Route{
		Vehicle:       domain.RouteVehicle{Name: name},
		Stops:         []string{"A", "B"},
		Geometry:      segments,
		DistanceKm:    1.234,
		TravelTimeMin: 5.67,
	}
}
