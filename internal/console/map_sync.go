package console

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// DefaultPalette colors routes by their position in a solve result.
var DefaultPalette = []string{"#10b981", "#3b82f6", "#f59e0b", "#ef4444", "#8b5cf6"}

const (
	routeWeight  = 5
	routeOpacity = 0.8
)

// RouteCard is the textual summary shown next to a drawn route.
type RouteCard struct {
	VehicleName string
	Color       string
	Distance    string
	TravelTime  string
	Stops       string
}

// MapSync owns every marker and route layer the session placed on the widget,
// along with the marker to entity mapping used to route widget events.
type MapSync struct {
	widget   ports.MapWidget
	fields   *Fields
	dispatch *Dispatcher
	palette  []string

	mu           sync.Mutex
	depotMarker  ports.MarkerID
	orderMarkers map[int64]ports.MarkerID
	markerRefs   map[ports.MarkerID]EntityRef
	routeLayers  []ports.LayerID
	cards        []RouteCard
}

type MapSyncOption func(*MapSync)

func WithPalette(colors ...string) MapSyncOption {
	return func(m *MapSync) {
		if len(colors) > 0 {
			m.palette = append([]string(nil), colors...)
		}
	}
}

// NewMapSync takes over the widget's event sink and binds map clicks to the depot form.
func NewMapSync(widget ports.MapWidget, fields *Fields, dispatch *Dispatcher, opts ...MapSyncOption) *MapSync {
	m := &MapSync{
		widget:       widget,
		fields:       fields,
		dispatch:     dispatch,
		palette:      DefaultPalette,
		orderMarkers: make(map[int64]ports.MarkerID),
		markerRefs:   make(map[ports.MarkerID]EntityRef),
	}
	for _, opt := range opts {
		opt(m)
	}

	dispatch.Bind(ActionMapClick, MapRef, m.writeDepotCoordinates)
	widget.Listen(m.handleEvent)

	return m
}

func (m *MapSync) writeDepotCoordinates(_ context.Context, ev ports.MapEvent) error {
	WriteDepotCoordinates(m.fields, ev.At)
	return nil
}

func (m *MapSync) handleEvent(ev ports.MapEvent) {
	var (
		action Action
		ref    EntityRef
	)

	switch ev.Kind {
	case ports.EventClick:
		if ev.Marker != 0 {
			return
		}
		action, ref = ActionMapClick, MapRef
	case ports.EventDragEnd:
		m.mu.Lock()
		r, ok := m.markerRefs[ev.Marker]
		m.mu.Unlock()
		if !ok {
			slog.Debug("map event from removed marker dropped", "marker", ev.Marker)
			return
		}
		action, ref = ActionDragDepot, r
	default:
		return
	}

	err := m.dispatch.Dispatch(context.Background(), action, ref, ev)
	if err != nil && !errors.Is(err, ErrStaleAction) {
		slog.Warn("map event handler failed", "action", action, "entity", ref.String(), "err", err)
	}
}

// SyncDepotMarker replaces the depot marker. A nil depot only removes it.
// Dragging the new marker writes its position into the depot form; it does not save.
func (m *MapSync) SyncDepotMarker(d *domain.Depot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.depotMarker != 0 {
		m.widget.RemoveMarker(m.depotMarker)
		delete(m.markerRefs, m.depotMarker)
		m.depotMarker = 0
	}
	m.dispatch.Unbind(ActionDragDepot, DepotRef)

	if d == nil {
		return
	}

	id := m.widget.AddMarker(ports.MarkerSpec{
		At:        d.Coordinates(),
		Icon:      ports.IconDepot,
		Popup:     "Depot",
		Draggable: true,
	})
	m.depotMarker = id
	m.markerRefs[id] = DepotRef
	m.dispatch.Bind(ActionDragDepot, DepotRef, m.writeDepotCoordinates)
}

// SyncOrderMarkers removes every order marker, then places one per located order.
// Orders without coordinates get no marker until the backend resolves them.
func (m *MapSync) SyncOrderMarkers(orders []domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for orderID, markerID := range m.orderMarkers {
		m.widget.RemoveMarker(markerID)
		delete(m.markerRefs, markerID)
		delete(m.orderMarkers, orderID)
	}

	for _, o := range orders {
		at, ok := o.Coordinates()
		if !ok {
			continue
		}
		if prev, dup := m.orderMarkers[o.ID]; dup {
			m.widget.RemoveMarker(prev)
			delete(m.markerRefs, prev)
		}

		id := m.widget.AddMarker(ports.MarkerSpec{
			At:    at,
			Icon:  ports.IconOrder,
			Popup: "Order " + o.ExternalID,
		})
		m.orderMarkers[o.ID] = id
		m.markerRefs[id] = OrderRef(o.ID)
	}
}

// RenderRoutes replaces every drawn route with the given list and returns its cards.
// The route at position i is drawn in palette[i mod len(palette)].
func (m *MapSync) RenderRoutes(routes []domain.Route) []RouteCard {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.routeLayers {
		m.widget.RemoveLayer(id)
	}
	m.routeLayers = m.routeLayers[:0]
	m.cards = make([]RouteCard, 0, len(routes))

	for i, r := range routes {
		color := m.palette[i%len(m.palette)]

		lines := make([]ports.Polyline, 0, len(r.Geometry))
		for _, seg := range r.Geometry {
			lines = append(lines, ports.Polyline{
				Points:  append([]domain.Coordinates(nil), seg...),
				Color:   color,
				Weight:  routeWeight,
				Opacity: routeOpacity,
			})
		}
		m.routeLayers = append(m.routeLayers, m.widget.AddLayerGroup(lines))

		m.cards = append(m.cards, RouteCard{
			VehicleName: r.Vehicle.Name,
			Color:       color,
			Distance:    fmt.Sprintf("%.2f", r.DistanceKm),
			TravelTime:  fmt.Sprintf("%.1f", r.TravelTimeMin),
			Stops:       strings.Join(r.Stops, ", "),
		})
	}

	return append([]RouteCard(nil), m.cards...)
}

func (m *MapSync) DepotMarker() (ports.MarkerID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depotMarker, m.depotMarker != 0
}

// OrderMarkers returns order id to marker id for every placed order marker.
func (m *MapSync) OrderMarkers() map[int64]ports.MarkerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]ports.MarkerID, len(m.orderMarkers))
	for k, v := range m.orderMarkers {
		out[k] = v
	}
	return out
}

func (m *MapSync) RouteLayers() []ports.LayerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.LayerID(nil), m.routeLayers...)
}

func (m *MapSync) Cards() []RouteCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RouteCard(nil), m.cards...)
}
