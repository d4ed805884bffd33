package console

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownVehicle = errors.New("unknown vehicle")

// EntityCache mirrors the server's depot, vehicles and orders.
//
// Each refresh replaces one collection wholesale with the result of a single
// fetch. A failed fetch leaves the previous snapshot in place. When refreshes
// of the same collection overlap, the one issued last wins regardless of
// completion order.
type EntityCache struct {
	store ports.RemoteStore

	mu       sync.Mutex
	depot    *domain.Depot
	vehicles []domain.Vehicle
	orders   []domain.Order

	depotSeq    refreshSeq
	vehiclesSeq refreshSeq
	ordersSeq   refreshSeq
}

type refreshSeq struct {
	issued  uint64
	applied uint64
}

func NewEntityCache(store ports.RemoteStore) *EntityCache {
	return &EntityCache{store: store}
}

func (c *EntityCache) RefreshDepot(ctx context.Context) error {
	seq := c.issue(&c.depotSeq)

	d, err := c.store.FetchDepot(ctx)
	if err != nil {
		return fmt.Errorf("refresh depot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq > c.depotSeq.applied {
		c.depot = d
		c.depotSeq.applied = seq
	}
	return nil
}

func (c *EntityCache) RefreshVehicles(ctx context.Context) error {
	seq := c.issue(&c.vehiclesSeq)

	vs, err := c.store.ListVehicles(ctx)
	if err != nil {
		return fmt.Errorf("refresh vehicles: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq > c.vehiclesSeq.applied {
		c.vehicles = vs
		c.vehiclesSeq.applied = seq
	}
	return nil
}

func (c *EntityCache) RefreshOrders(ctx context.Context) error {
	seq := c.issue(&c.ordersSeq)

	orders, err := c.store.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("refresh orders: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq > c.ordersSeq.applied {
		c.orders = orders
		c.ordersSeq.applied = seq
	}
	return nil
}

func (c *EntityCache) issue(seq *refreshSeq) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq.issued++
	return seq.issued
}

// Depot returns a copy of the cached depot, or nil when none is stored.
func (c *EntityCache) Depot() *domain.Depot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depot == nil {
		return nil
	}
	d := *c.depot
	return &d
}

func (c *EntityCache) Vehicles() []domain.Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Vehicle(nil), c.vehicles...)
}

func (c *EntityCache) Orders() []domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Order(nil), c.orders...)
}

func (c *EntityCache) Order(id int64) (domain.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

// ToggleVehicleActive flips the local active flag and returns the new value.
// Nothing is written to the server; the next vehicle refresh resets it.
func (c *EntityCache) ToggleVehicleActive(id int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.vehicles {
		if c.vehicles[i].ID == id {
			c.vehicles[i].Active = !c.vehicles[i].Active
			return c.vehicles[i].Active, nil
		}
	}
	return false, fmt.Errorf("toggle vehicle %d: %w", id, ErrUnknownVehicle)
}

// ActiveVehicleIDs returns the ids of active vehicles in server order.
func (c *EntityCache) ActiveVehicleIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.vehicles))
	for _, v := range c.vehicles {
		if v.Active {
			ids = append(ids, v.ID)
		}
	}
	return ids
}
