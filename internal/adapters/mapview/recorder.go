package mapview

import (
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"sort"
	"sync"
)

// Recorder is a headless MapWidget that keeps markers and layer groups in
// memory. It backs the terminal Canvas and is used directly in tests.
type Recorder struct {
	mu         sync.Mutex
	nextMarker ports.MarkerID
	nextLayer  ports.LayerID
	markers    map[ports.MarkerID]ports.MarkerSpec
	layers     map[ports.LayerID][]ports.Polyline
	listener   func(ports.MapEvent)
}

func NewRecorder() *Recorder {
	return &Recorder{
		markers: make(map[ports.MarkerID]ports.MarkerSpec),
		layers:  make(map[ports.LayerID][]ports.Polyline),
	}
}

var _ ports.MapWidget = (*Recorder)(nil)

func (r *Recorder) AddMarker(spec ports.MarkerSpec) ports.MarkerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextMarker++
	r.markers[r.nextMarker] = spec
	return r.nextMarker
}

func (r *Recorder) RemoveMarker(id ports.MarkerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.markers, id)
}

func (r *Recorder) AddLayerGroup(lines []ports.Polyline) ports.LayerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	group := make([]ports.Polyline, len(lines))
	for i, l := range lines {
		l.Points = append([]domain.Coordinates(nil), l.Points...)
		group[i] = l
	}

	r.nextLayer++
	r.layers[r.nextLayer] = group
	return r.nextLayer
}

func (r *Recorder) RemoveLayer(id ports.LayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.layers, id)
}

func (r *Recorder) Listen(fn func(ports.MapEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = fn
}

// Emit delivers ev to the registered listener, as a user gesture would.
func (r *Recorder) Emit(ev ports.MapEvent) {
	r.mu.Lock()
	fn := r.listener
	r.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
}

// MoveMarker repositions a draggable marker and emits the drag-end event.
// It reports false when the marker is gone or not draggable.
func (r *Recorder) MoveMarker(id ports.MarkerID, to domain.Coordinates) bool {
	r.mu.Lock()
	spec, ok := r.markers[id]
	if !ok || !spec.Draggable {
		r.mu.Unlock()
		return false
	}
	spec.At = to
	r.markers[id] = spec
	r.mu.Unlock()

	r.Emit(ports.MapEvent{Kind: ports.EventDragEnd, Marker: id, At: to})
	return true
}

func (r *Recorder) Marker(id ports.MarkerID) (ports.MarkerSpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spec, ok := r.markers[id]
	return spec, ok
}

// Markers returns a snapshot of live markers.
func (r *Recorder) Markers() map[ports.MarkerID]ports.MarkerSpec {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[ports.MarkerID]ports.MarkerSpec, len(r.markers))
	for id, spec := range r.markers {
		out[id] = spec
	}
	return out
}

// MarkerIDs returns live marker ids with the given icon, oldest first.
func (r *Recorder) MarkerIDs(icon ports.MarkerIcon) []ports.MarkerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []ports.MarkerID
	for id, spec := range r.markers {
		if spec.Icon == icon {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Layers returns a snapshot of live layer groups.
func (r *Recorder) Layers() map[ports.LayerID][]ports.Polyline {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[ports.LayerID][]ports.Polyline, len(r.layers))
	for id, lines := range r.layers {
		out[id] = lines
	}
	return out
}
