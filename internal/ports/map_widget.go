package ports

import "delivery-route-console/internal/domain"

type MarkerID int64

type LayerID int64

type MarkerIcon int

const (
	IconOrder MarkerIcon = iota
	IconDepot
)

type MarkerSpec struct {
	At        domain.Coordinates
	Icon      MarkerIcon
	Popup     string
	Draggable bool
}

type Polyline struct {
	Points  []domain.Coordinates
	Color   string
	Weight  int
	Opacity float64
}

type MapEventKind int

const (
	EventClick MapEventKind = iota
	EventDragEnd
)

// MapEvent is emitted by a widget. Marker is zero for map-level clicks.
type MapEvent struct {
	Kind   MapEventKind
	Marker MarkerID
	At     domain.Coordinates
}

// Port: the drawing capabilities the console needs from a map widget.
// Marker and layer ids are never reused by a widget.
type MapWidget interface {
	AddMarker(spec MarkerSpec) MarkerID
	RemoveMarker(id MarkerID)

	// Draw the polylines as one group that is removed atomically.
	AddLayerGroup(lines []Polyline) LayerID
	RemoveLayer(id LayerID)

	// Register the single sink for click and drag-end events.
	Listen(fn func(MapEvent))
}
