package mapview

import (
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"strings"
	"testing"
)

func TestRecorderIDsNeverReused(t *testing.T) {
	r := NewRecorder()

	a := r.AddMarker(ports.MarkerSpec{At: domain.Coordinates{Lat: 1, Lon: 1}})
	r.RemoveMarker(a)
	b := r.AddMarker(ports.MarkerSpec{At: domain.Coordinates{Lat: 1, Lon: 1}})

	if a == b {
		t.Fatalf("marker id %d reused", a)
	}
	if a == 0 {
		t.Fatal("marker ids must start above zero")
	}
	if len(r.Markers()) != 1 {
		t.Fatalf("len(Markers) = %d, want 1", len(r.Markers()))
	}
}

func TestRecorderMoveMarkerEmitsDragEnd(t *testing.T) {
	r := NewRecorder()

	var got []ports.MapEvent
	r.Listen(func(ev ports.MapEvent) { got = append(got, ev) })

	fixed := r.AddMarker(ports.MarkerSpec{Icon: ports.IconOrder})
	depot := r.AddMarker(ports.MarkerSpec{Icon: ports.IconDepot, Draggable: true})

	to := domain.Coordinates{Lat: 50.5, Lon: 30.6}
	if r.MoveMarker(fixed, to) {
		t.Fatal("MoveMarker moved a non-draggable marker")
	}
	if !r.MoveMarker(depot, to) {
		t.Fatal("MoveMarker refused a draggable marker")
	}

	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	if got[0].Kind != ports.EventDragEnd || got[0].Marker != depot || got[0].At != to {
		t.Fatalf("event = %+v", got[0])
	}
	if spec, _ := r.Marker(depot); spec.At != to {
		t.Fatalf("depot at %+v, want %+v", spec.At, to)
	}
}

func TestCanvasRendersMarkersAndCursor(t *testing.T) {
	c := NewCanvas(20, 10)
	c.AddMarker(ports.MarkerSpec{At: domain.Coordinates{Lat: 50.40, Lon: 30.40}, Icon: ports.IconDepot, Draggable: true})
	c.AddMarker(ports.MarkerSpec{At: domain.Coordinates{Lat: 50.50, Lon: 30.60}, Icon: ports.IconOrder})
	c.AddLayerGroup([]ports.Polyline{{
		Points: []domain.Coordinates{{Lat: 50.40, Lon: 30.40}, {Lat: 50.50, Lon: 30.60}},
		Color:  "#10b981",
	}})
	c.Fit()

	out := c.Render()
	if strings.Count(out, "\n") != 9 {
		t.Fatalf("rendered %d lines, want 10", strings.Count(out, "\n")+1)
	}
	for _, want := range []string{"D", "o", "•"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestCanvasKeepsLongSegmentsWhenZoomed(t *testing.T) {
	c := NewCanvas(40, 20)
	c.AddLayerGroup([]ports.Polyline{{
		Points: []domain.Coordinates{{Lat: 50.45, Lon: 30.40}, {Lat: 50.45, Lon: 30.60}},
		Color:  "#3b82f6",
	}})
	c.Fit()

	for step := 0; step <= 8; step++ {
		if n := strings.Count(c.Render(), "•"); n == 0 {
			t.Fatalf("zoom step %d: no route cells drawn", step)
		}
		c.Zoom(0.5)
	}
}

func TestCanvasSkipsSegmentsOutsideView(t *testing.T) {
	c := NewCanvas(20, 10)
	c.AddLayerGroup([]ports.Polyline{{
		Points: []domain.Coordinates{{Lat: 10, Lon: 10}, {Lat: 10, Lon: 11}},
		Color:  "#ef4444",
	}})

	if strings.Contains(c.Render(), "•") {
		t.Fatal("segment far outside the view was drawn")
	}
}

func TestCanvasClickAndDragUseCursor(t *testing.T) {
	c := NewCanvas(21, 11)

	var events []ports.MapEvent
	c.Listen(func(ev ports.MapEvent) { events = append(events, ev) })

	at := c.Click()
	if at.Lat < 50.44 || at.Lat > 50.46 || at.Lon < 30.51 || at.Lon > 30.53 {
		t.Fatalf("centre click at %+v, want near the default centre", at)
	}

	if c.DragDepotToCursor() {
		t.Fatal("DragDepotToCursor succeeded with no depot")
	}

	id := c.AddMarker(ports.MarkerSpec{At: domain.Coordinates{Lat: 50, Lon: 30}, Icon: ports.IconDepot, Draggable: true})
	c.MoveCursor(3, -2)
	if !c.DragDepotToCursor() {
		t.Fatal("DragDepotToCursor failed")
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Kind != ports.EventClick || events[0].Marker != 0 {
		t.Fatalf("first event = %+v, want map click", events[0])
	}
	if events[1].Kind != ports.EventDragEnd || events[1].Marker != id {
		t.Fatalf("second event = %+v, want drag-end of %d", events[1], id)
	}
	if events[1].At != c.Cursor() {
		t.Fatalf("drag-end at %+v, want cursor %+v", events[1].At, c.Cursor())
	}
}
