package console

import (
	"context"
	"delivery-route-console/internal/ports"
	"errors"
	"fmt"
	"sync"
)

type Action string

const (
	ActionMapClick    Action = "map.click"
	ActionDragDepot   Action = "depot.drag"
	ActionDeleteOrder Action = "order.delete"
)

// EntityRef names the entity an action is bound to.
type EntityRef struct {
	Kind string
	ID   int64
}

var (
	MapRef   = EntityRef{Kind: "map"}
	DepotRef = EntityRef{Kind: "depot"}
)

func OrderRef(id int64) EntityRef { return EntityRef{Kind: "order", ID: id} }

func (r EntityRef) String() string {
	if r.ID == 0 {
		return r.Kind
	}
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// ErrStaleAction is returned when an action targets an entity that is no longer bound.
var ErrStaleAction = errors.New("action target no longer exists")

type Handler func(ctx context.Context, ev ports.MapEvent) error

type dispatchKey struct {
	action Action
	ref    EntityRef
}

// Dispatcher maps (action, entity) to its handler. Handlers are bound and
// unbound together with the entities they act on.
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[dispatchKey]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[dispatchKey]Handler)}
}

func (d *Dispatcher) Bind(action Action, ref EntityRef, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[dispatchKey{action, ref}] = h
}

func (d *Dispatcher) Unbind(action Action, ref EntityRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, dispatchKey{action, ref})
}

// UnbindAction drops every binding of action.
func (d *Dispatcher) UnbindAction(action Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range d.handlers {
		if k.action == action {
			delete(d.handlers, k)
		}
	}
}

func (d *Dispatcher) Bound(action Action, ref EntityRef) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.handlers[dispatchKey{action, ref}]
	return ok
}

// Dispatch runs the bound handler outside the lock.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, ref EntityRef, ev ports.MapEvent) error {
	d.mu.Lock()
	h, ok := d.handlers[dispatchKey{action, ref}]
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("dispatch %s on %s: %w", action, ref, ErrStaleAction)
	}
	return h(ctx, ev)
}
