package services

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
)

// memRepo is an in-memory PlanningRepository for service tests.
type memRepo struct {
	depot    *domain.Depot
	vehicles []domain.Vehicle
	orders   []domain.Order
	nextID   int64
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) GetDepot(ctx context.Context) (*domain.Depot, error) { return m.depot, nil }

func (m *memRepo) SaveDepot(ctx context.Context, d domain.Depot) (domain.Depot, error) {
	m.depot = &d
	return d, nil
}

func (m *memRepo) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) { return m.vehicles, nil }

func (m *memRepo) CreateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v.ID = m.id()
	m.vehicles = append(m.vehicles, v)
	return v, nil
}

func (m *memRepo) UpdateVehicle(ctx context.Context, id int64, u ports.VehicleUpdate) (domain.Vehicle, error) {
	return domain.Vehicle{}, ports.ErrNotFound
}

func (m *memRepo) DeleteVehicle(ctx context.Context, id int64) error { return ports.ErrNotFound }

func (m *memRepo) ListOrders(ctx context.Context) ([]domain.Order, error) { return m.orders, nil }

func (m *memRepo) CreateOrders(ctx context.Context, orders []domain.Order) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		o.ID = m.id()
		m.orders = append(m.orders, o)
		out = append(out, o)
	}
	return out, nil
}

func (m *memRepo) UpdateOrder(ctx context.Context, id int64, u ports.OrderUpdate) (domain.Order, error) {
	return domain.Order{}, ports.ErrNotFound
}

func (m *memRepo) DeleteOrder(ctx context.Context, id int64) error { return ports.ErrNotFound }

// recordingSolver captures the last problem it was given.
type recordingSolver struct {
	last  *ports.SolveProblem
	calls int
	err   error
}

func (s *recordingSolver) Solve(ctx context.Context, p ports.SolveProblem) ([]domain.Route, error) {
	s.calls++
	s.last = &p
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Route{}, nil
}

func (s *recordingSolver) Ready(ctx context.Context) bool { return true }

func ptr[T any](v T) *T { return &v }
