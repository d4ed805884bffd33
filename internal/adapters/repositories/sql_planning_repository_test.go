package repositories

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/db"
	"delivery-route-console/internal/ports"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *SQLPlanningRepository {
	t.Helper()

	conn, dialect, err := db.Open("sqlite", filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn, dialect); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	// Running it twice must be harmless.
	if err := InitSchema(conn, dialect); err != nil {
		t.Fatalf("InitSchema again: %v", err)
	}

	return NewSQLPlanningRepository(conn, dialect)
}

func ptr[T any](v T) *T { return &v }

func TestDepotSingleton(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	d, err := repo.GetDepot(ctx)
	if err != nil {
		t.Fatalf("GetDepot: %v", err)
	}
	if d != nil {
		t.Fatalf("GetDepot on empty db = %+v, want nil", d)
	}

	if _, err := repo.SaveDepot(ctx, domain.Depot{Latitude: 1, Longitude: 2, Address: ptr("first")}); err != nil {
		t.Fatalf("SaveDepot: %v", err)
	}
	if _, err := repo.SaveDepot(ctx, domain.Depot{Latitude: 3, Longitude: 4}); err != nil {
		t.Fatalf("SaveDepot: %v", err)
	}

	var rows int
	if err := repo.DB.QueryRow(`SELECT COUNT(*) FROM depot`).Scan(&rows); err != nil {
		t.Fatalf("count depot rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("depot rows = %d, want 1", rows)
	}

	d, err = repo.GetDepot(ctx)
	if err != nil {
		t.Fatalf("GetDepot: %v", err)
	}
	if d.Latitude != 3 || d.Longitude != 4 || d.Address != nil {
		t.Fatalf("GetDepot = %+v, want the second save", d)
	}
}

func TestVehicleLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v1, err := repo.CreateVehicle(ctx, domain.Vehicle{Name: "Van", Capacity: 10, Active: true})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	v2, err := repo.CreateVehicle(ctx, domain.Vehicle{Name: "Truck", Capacity: 40, DefaultReady: true})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if v1.ID == 0 || v2.ID <= v1.ID {
		t.Fatalf("ids = %d, %d; want increasing non-zero ids", v1.ID, v2.ID)
	}

	updated, err := repo.UpdateVehicle(ctx, v2.ID, ports.VehicleUpdate{Active: ptr(true), Capacity: ptr(50.0)})
	if err != nil {
		t.Fatalf("UpdateVehicle: %v", err)
	}
	if !updated.Active || updated.Capacity != 50 || updated.Name != "Truck" || !updated.DefaultReady {
		t.Fatalf("UpdateVehicle = %+v", updated)
	}

	if _, err := repo.UpdateVehicle(ctx, 999, ports.VehicleUpdate{}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("UpdateVehicle(999) err = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteVehicle(ctx, v1.ID); err != nil {
		t.Fatalf("DeleteVehicle: %v", err)
	}
	if err := repo.DeleteVehicle(ctx, v1.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("second DeleteVehicle err = %v, want ErrNotFound", err)
	}

	vs, err := repo.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles: %v", err)
	}
	if len(vs) != 1 || vs[0].ID != v2.ID {
		t.Fatalf("ListVehicles = %+v", vs)
	}
}

func TestOrderLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateOrders(ctx, []domain.Order{
		{ExternalID: "O1", Address: "a", Latitude: ptr(50.1), Longitude: ptr(30.1), Volume: 2.5, WindowStart: ptr(10.0)},
		{ExternalID: "O2", Volume: 1},
	})
	if err != nil {
		t.Fatalf("CreateOrders: %v", err)
	}
	if len(created) != 2 || created[0].ID == 0 || created[1].ID == created[0].ID {
		t.Fatalf("CreateOrders = %+v", created)
	}

	orders, err := repo.ListOrders(ctx)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("len(ListOrders) = %d, want 2", len(orders))
	}
	if *orders[0].Latitude != 50.1 || *orders[0].WindowStart != 10 || orders[0].WindowEnd != nil {
		t.Fatalf("order 1 = %+v", orders[0])
	}
	if orders[1].Located() {
		t.Fatalf("order 2 should have null coordinates")
	}

	updated, err := repo.UpdateOrder(ctx, created[0].ID, ports.OrderUpdate{
		Location:       &domain.Coordinates{Lat: 1, Lon: 2},
		SetWindowStart: true,
		WindowStart:    nil,
	})
	if err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	if *updated.Latitude != 1 || *updated.Longitude != 2 || updated.WindowStart != nil || updated.Volume != 2.5 {
		t.Fatalf("UpdateOrder = %+v", updated)
	}

	if err := repo.DeleteOrder(ctx, created[1].ID); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if err := repo.DeleteOrder(ctx, created[1].ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("second DeleteOrder err = %v, want ErrNotFound", err)
	}
}

func TestSeedFromJSON(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{
		"depot": {"latitude": 50.45, "longitude": 30.52, "address": "Depot"},
		"vehicles": [{"name": "Van", "capacity": 10}, {"name": "Spare", "capacity": 5, "active": false}],
		"orders": [{"external_id": "O1", "latitude": 50.4, "longitude": 30.5, "volume": 1}]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := SeedFromJSON(ctx, repo, path); err != nil {
			t.Fatalf("SeedFromJSON run %d: %v", i+1, err)
		}
	}

	vs, _ := repo.ListVehicles(ctx)
	if len(vs) != 2 || !vs[0].Active || vs[1].Active {
		t.Fatalf("vehicles = %+v", vs)
	}
	orders, _ := repo.ListOrders(ctx)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1 after seeding twice", len(orders))
	}
	d, _ := repo.GetDepot(ctx)
	if d == nil || d.AddressOrEmpty() != "Depot" {
		t.Fatalf("depot = %+v", d)
	}
}

func TestSeedRejectsUnlocatedOrders(t *testing.T) {
	repo := newTestRepo(t)

	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(`{"orders": [{"external_id": "O1", "volume": 1}]}`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	if err := SeedFromJSON(context.Background(), repo, path); err == nil {
		t.Fatal("expected error for order without coordinates")
	}
}
