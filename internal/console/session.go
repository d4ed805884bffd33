package console

import (
	"context"
	"delivery-route-console/internal/ports"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Session wires the console components for one operator.
//
// Every mutating action is a single call that returns only after its request,
// the cache refresh and the map update have all finished. Validation errors
// stop the action before any request is sent. Application errors are kept as
// the operator notice and skip the refresh and render.
type Session struct {
	store    ports.RemoteStore
	fields   *Fields
	dispatch *Dispatcher
	cache    *EntityCache
	maps     *MapSync
	solver   *SolveOrchestrator

	mu     sync.Mutex
	notice string
	health *ports.Health
}

func NewSession(store ports.RemoteStore, widget ports.MapWidget, opts ...MapSyncOption) *Session {
	fields := NewFields()
	dispatch := NewDispatcher()
	maps := NewMapSync(widget, fields, dispatch, opts...)

	return &Session{
		store:    store,
		fields:   fields,
		dispatch: dispatch,
		cache:    NewEntityCache(store),
		maps:     maps,
		solver:   NewSolveOrchestrator(store, maps),
	}
}

func (s *Session) Fields() *Fields         { return s.fields }
func (s *Session) Cache() *EntityCache     { return s.cache }
func (s *Session) Maps() *MapSync          { return s.maps }
func (s *Session) Dispatcher() *Dispatcher { return s.dispatch }

// Load reads health, depot, vehicles and orders. Each part is attempted even
// when an earlier one fails; the failures are joined.
func (s *Session) Load(ctx context.Context) error {
	return errors.Join(
		s.RefreshHealth(ctx),
		s.LoadDepot(ctx),
		s.LoadVehicles(ctx),
		s.LoadOrders(ctx),
	)
}

func (s *Session) RefreshHealth(ctx context.Context) error {
	h, err := s.store.Health(ctx)
	if err != nil {
		return s.fail("health", err)
	}
	s.mu.Lock()
	s.health = &h
	s.mu.Unlock()
	return nil
}

// Health returns the last known backend readiness, or nil before the first check.
func (s *Session) Health() *ports.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.health == nil {
		return nil
	}
	h := *s.health
	return &h
}

// LoadDepot refreshes the depot, fills the depot form and places its marker.
func (s *Session) LoadDepot(ctx context.Context) error {
	if err := s.cache.RefreshDepot(ctx); err != nil {
		return s.fail("load depot", err)
	}
	d := s.cache.Depot()
	if d != nil {
		WriteDepot(s.fields, *d)
	}
	s.maps.SyncDepotMarker(d)
	return nil
}

func (s *Session) LoadVehicles(ctx context.Context) error {
	if err := s.cache.RefreshVehicles(ctx); err != nil {
		return s.fail("load vehicles", err)
	}
	return nil
}

// LoadOrders refreshes the order list, redraws order markers and rebinds
// the per-order actions to the ids that are still live.
func (s *Session) LoadOrders(ctx context.Context) error {
	if err := s.cache.RefreshOrders(ctx); err != nil {
		return s.fail("load orders", err)
	}

	orders := s.cache.Orders()
	s.maps.SyncOrderMarkers(orders)

	s.dispatch.UnbindAction(ActionDeleteOrder)
	for _, o := range orders {
		id := o.ID
		s.dispatch.Bind(ActionDeleteOrder, OrderRef(id), func(ctx context.Context, _ ports.MapEvent) error {
			return s.DeleteOrder(ctx, id)
		})
	}
	return nil
}

func (s *Session) SaveDepot(ctx context.Context) error {
	in, err := ReadDepot(s.fields)
	if err != nil {
		return fmt.Errorf("save depot: %w", err)
	}
	if _, err := s.store.SaveDepot(ctx, in); err != nil {
		return s.fail("save depot", err)
	}
	return s.LoadDepot(ctx)
}

func (s *Session) AddVehicle(ctx context.Context) error {
	in, err := ReadVehicle(s.fields)
	if err != nil {
		return fmt.Errorf("add vehicle: %w", err)
	}
	if _, err := s.store.AddVehicle(ctx, in); err != nil {
		return s.fail("add vehicle", err)
	}
	ClearVehicleForm(s.fields)
	return s.LoadVehicles(ctx)
}

// ToggleVehicle flips a vehicle's local active flag.
func (s *Session) ToggleVehicle(id int64) (bool, error) {
	return s.cache.ToggleVehicleActive(id)
}

func (s *Session) AddOrder(ctx context.Context) error {
	in, err := ReadOrder(s.fields)
	if err != nil {
		return fmt.Errorf("add order: %w", err)
	}
	if _, err := s.store.AddOrder(ctx, in); err != nil {
		return s.fail("add order", err)
	}
	ClearOrderForm(s.fields)
	return s.LoadOrders(ctx)
}

func (s *Session) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return s.fail("delete order", err)
	}
	return s.LoadOrders(ctx)
}

func (s *Session) ImportOrders(ctx context.Context, filename string, content io.Reader) error {
	if err := s.store.ImportOrders(ctx, filename, content); err != nil {
		return s.fail("import orders", err)
	}
	return s.LoadOrders(ctx)
}

// Dispatch runs a bound entity action, such as deleting an order from its list row.
// It returns ErrStaleAction when the entity has gone since the row was drawn.
func (s *Session) Dispatch(ctx context.Context, action Action, ref EntityRef) error {
	return s.dispatch.Dispatch(ctx, action, ref, ports.MapEvent{})
}

// Solve plans routes for the locally active vehicles and the force-all flag.
func (s *Session) Solve(ctx context.Context) ([]RouteCard, error) {
	cards, err := s.solver.Solve(ctx, ReadForceAll(s.fields), s.cache.ActiveVehicleIDs())
	if err != nil {
		if errors.Is(err, ErrSolveInProgress) {
			return nil, err
		}
		s.record("solve", err)
		return nil, err
	}
	return cards, nil
}

func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *Session) ClearNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
}

func (s *Session) fail(op string, err error) error {
	s.record(op, err)
	return fmt.Errorf("%s: %w", op, err)
}

// record keeps application errors as the operator notice and logs the rest.
func (s *Session) record(op string, err error) {
	var appErr *ports.AppError
	if errors.As(err, &appErr) {
		s.mu.Lock()
		s.notice = appErr.Message
		s.mu.Unlock()
		slog.Info("backend rejected action", "op", op, "msg", appErr.Message)
	} else {
		slog.Error("action failed", "op", op, "err", err)
	}
}
