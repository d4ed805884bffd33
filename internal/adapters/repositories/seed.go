package repositories

import (
	"context"
	"delivery-route-console/internal/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type DepotSeed struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address"`
}

type VehicleSeed struct {
	Name         string  `json:"name"`
	Capacity     float64 `json:"capacity"`
	Active       *bool   `json:"active"`
	DefaultReady bool    `json:"default_ready"`
}

type OrderSeed struct {
	ExternalID  string   `json:"external_id"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Volume      float64  `json:"volume"`
	WindowStart *float64 `json:"window_start"`
	WindowEnd   *float64 `json:"window_end"`
}

type PlannerSeed struct {
	Depot    *DepotSeed    `json:"depot"`
	Vehicles []VehicleSeed `json:"vehicles"`
	Orders   []OrderSeed   `json:"orders"`
}

// SeedFromJSON populates an empty planner database from a JSON file.
// Seeded orders must carry coordinates since no geocoder is involved.
// Collections that already hold rows are left alone.
func SeedFromJSON(ctx context.Context, repo *SQLPlanningRepository, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed planner: read %q: %w", jsonPath, err)
	}

	var data PlannerSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed planner: parse json: %w", err)
	}

	vehicles := make([]domain.Vehicle, 0, len(data.Vehicles))
	for i, v := range data.Vehicles {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return fmt.Errorf("seed planner: vehicle at index %d: name cannot be empty", i+1)
		}
		if v.Capacity <= 0 {
			return fmt.Errorf("seed planner: vehicle %q: capacity must be positive", name)
		}
		active := true
		if v.Active != nil {
			active = *v.Active
		}
		vehicles = append(vehicles, domain.Vehicle{
			Name:         name,
			Capacity:     v.Capacity,
			Active:       active,
			DefaultReady: v.DefaultReady,
		})
	}

	orders := make([]domain.Order, 0, len(data.Orders))
	for i, o := range data.Orders {
		ext := strings.TrimSpace(o.ExternalID)
		if ext == "" {
			return fmt.Errorf("seed planner: order at index %d: external_id cannot be empty", i+1)
		}
		if o.Latitude == nil || o.Longitude == nil {
			return fmt.Errorf("seed planner: order %q: latitude and longitude are required", ext)
		}
		orders = append(orders, domain.Order{
			ExternalID:  ext,
			Address:     strings.TrimSpace(o.Address),
			Latitude:    o.Latitude,
			Longitude:   o.Longitude,
			Volume:      o.Volume,
			WindowStart: o.WindowStart,
			WindowEnd:   o.WindowEnd,
		})
	}

	if data.Depot != nil {
		current, err := repo.GetDepot(ctx)
		if err != nil {
			return fmt.Errorf("seed planner: %w", err)
		}
		if current == nil {
			d := domain.Depot{Latitude: data.Depot.Latitude, Longitude: data.Depot.Longitude, Address: data.Depot.Address}
			if _, err := repo.SaveDepot(ctx, d); err != nil {
				return fmt.Errorf("seed planner: %w", err)
			}
		} else {
			slog.Info("seed: depot already set, skipping")
		}
	}

	existingVehicles, err := repo.ListVehicles(ctx)
	if err != nil {
		return fmt.Errorf("seed planner: %w", err)
	}
	if len(existingVehicles) == 0 {
		for _, v := range vehicles {
			if _, err := repo.CreateVehicle(ctx, v); err != nil {
				return fmt.Errorf("seed planner: %w", err)
			}
		}
	} else {
		slog.Info("seed: vehicles already present, skipping", "count", len(existingVehicles))
	}

	existingOrders, err := repo.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("seed planner: %w", err)
	}
	if len(existingOrders) == 0 {
		if _, err := repo.CreateOrders(ctx, orders); err != nil {
			return fmt.Errorf("seed planner: %w", err)
		}
	} else {
		slog.Info("seed: orders already present, skipping", "count", len(existingOrders))
	}

	return nil
}
