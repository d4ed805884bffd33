package console

import (
	"context"
	"delivery-route-console/internal/adapters/geocode"
	"delivery-route-console/internal/adapters/mapview"
	"delivery-route-console/internal/adapters/remote"
	"delivery-route-console/internal/adapters/repositories"
	"delivery-route-console/internal/adapters/solver"
	"delivery-route-console/internal/api"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/db"
	"delivery-route-console/internal/ports"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

// newLiveSession runs the planner API in-process and returns a session
// talking to it over HTTP, plus the recorder standing in for the map.
func newLiveSession(t *testing.T) (*Session, *mapview.Recorder) {
	t.Helper()

	conn, dialect, err := db.Open("sqlite", filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := repositories.InitSchema(conn, dialect); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Repo: repositories.NewSQLPlanningRepository(conn, dialect),
		Geocoder: geocode.NewMockGeocoder(map[string]domain.Coordinates{
			"Khreshchatyk 1": {Lat: 50.4474, Lon: 30.5225},
		}),
		Solver: solver.StaticSolver{},
	}))
	t.Cleanup(srv.Close)

	rec := mapview.NewRecorder()
	return NewSession(remote.NewClient(srv.URL+"/api"), rec), rec
}

func TestEndToEndAddOrderByAddress(t *testing.T) {
	s, rec := newLiveSession(t)
	ctx := context.Background()

	f := s.Fields()
	f.Set(FieldOrderID, "O1")
	f.Set(FieldOrderAddress, "Khreshchatyk 1")
	f.Set(FieldOrderVolume, "2.5")

	if err := s.AddOrder(ctx); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}

	orders := s.Cache().Orders()
	if len(orders) != 1 || orders[0].ExternalID != "O1" || orders[0].Volume != 2.5 {
		t.Fatalf("orders = %+v, want O1 with volume 2.5", orders)
	}

	markers := s.Maps().OrderMarkers()
	id, ok := markers[orders[0].ID]
	if !ok {
		t.Fatalf("no marker for the new order")
	}
	spec, _ := rec.Marker(id)
	if spec.At != (domain.Coordinates{Lat: 50.4474, Lon: 30.5225}) {
		t.Fatalf("marker at %+v, want geocoded position", spec.At)
	}
	if spec.Popup != "Order O1" {
		t.Fatalf("popup = %q, want Order O1", spec.Popup)
	}
}

func TestEndToEndSolveWithActiveVehicleOnly(t *testing.T) {
	s, rec := newLiveSession(t)
	ctx := context.Background()
	f := s.Fields()

	f.Set(FieldDepotLat, "50.45")
	f.Set(FieldDepotLon, "30.52")
	if err := s.SaveDepot(ctx); err != nil {
		t.Fatalf("SaveDepot: %v", err)
	}

	for _, v := range [][2]string{{"Active van", "10"}, {"Parked van", "10"}} {
		f.Set(FieldVehicleName, v[0])
		f.Set(FieldVehicleCapacity, v[1])
		if err := s.AddVehicle(ctx); err != nil {
			t.Fatalf("AddVehicle %s: %v", v[0], err)
		}
	}

	f.Set(FieldOrderID, "O1")
	f.Set(FieldOrderLat, "50.46")
	f.Set(FieldOrderLon, "30.50")
	f.Set(FieldOrderVolume, "1")
	if err := s.AddOrder(ctx); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}

	vehicles := s.Cache().Vehicles()
	if len(vehicles) != 2 {
		t.Fatalf("vehicles = %+v, want 2", vehicles)
	}
	if _, err := s.ToggleVehicle(vehicles[1].ID); err != nil {
		t.Fatalf("ToggleVehicle: %v", err)
	}

	cards, err := s.Solve(ctx)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if len(cards) != 1 || cards[0].VehicleName != "Active van" {
		t.Fatalf("cards = %+v, want one card for Active van", cards)
	}
	if cards[0].Color != DefaultPalette[0] {
		t.Fatalf("color = %q, want first palette color", cards[0].Color)
	}
	if layers := rec.Layers(); len(layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(layers))
	}
}

func TestEndToEndDeleteOrder(t *testing.T) {
	s, rec := newLiveSession(t)
	ctx := context.Background()
	f := s.Fields()

	for _, o := range [][3]string{{"O1", "50.46", "30.50"}, {"O2", "50.40", "30.60"}} {
		f.Set(FieldOrderID, o[0])
		f.Set(FieldOrderLat, o[1])
		f.Set(FieldOrderLon, o[2])
		f.Set(FieldOrderVolume, "1")
		if err := s.AddOrder(ctx); err != nil {
			t.Fatalf("AddOrder %s: %v", o[0], err)
		}
	}

	orders := s.Cache().Orders()
	if len(orders) != 2 {
		t.Fatalf("orders = %+v, want 2", orders)
	}
	before := s.Maps().OrderMarkers()
	gone, kept := orders[0], orders[1]

	if err := s.Dispatch(ctx, ActionDeleteOrder, OrderRef(gone.ID)); err != nil {
		t.Fatalf("Dispatch delete: %v", err)
	}

	if _, ok := s.Cache().Order(gone.ID); ok {
		t.Fatalf("deleted order still listed")
	}
	after := s.Maps().OrderMarkers()
	if _, ok := after[gone.ID]; ok {
		t.Fatalf("deleted order still has a marker")
	}
	keptSpec, ok := rec.Marker(after[kept.ID])
	if !ok || keptSpec.At != (domain.Coordinates{Lat: 50.40, Lon: 30.60}) || keptSpec.Popup != "Order O2" {
		t.Fatalf("marker of %s = %+v, want unchanged at 50.40, 30.60", kept.ExternalID, keptSpec)
	}
	if _, ok := rec.Marker(before[gone.ID]); ok {
		t.Fatalf("widget still shows the deleted marker")
	}
	if n := len(rec.MarkerIDs(ports.IconOrder)); n != 1 {
		t.Fatalf("order markers on widget = %d, want 1", n)
	}

	if err := s.Dispatch(ctx, ActionDeleteOrder, OrderRef(gone.ID)); !errors.Is(err, ErrStaleAction) {
		t.Fatalf("second delete err = %v, want ErrStaleAction", err)
	}
}
