package services

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"fmt"
	"log/slog"
	"strings"
)

// CreateOrder stores one order. Missing coordinates are resolved from the address.
func CreateOrder(
	ctx context.Context,
	in ports.OrderInput,
	repo ports.PlanningRepository,
	geocoder ports.Geocoder,
) (domain.Order, error) {
	ext := strings.TrimSpace(in.ExternalID)
	if ext == "" {
		return domain.Order{}, &InputError{Msg: "external_id is required"}
	}

	order := domain.Order{
		ExternalID:  ext,
		Address:     strings.TrimSpace(in.Address),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Volume:      in.Volume,
		WindowStart: in.WindowStart,
		WindowEnd:   in.WindowEnd,
	}

	if !order.Located() {
		if order.Address == "" {
			return domain.Order{}, &InputError{Msg: "address or coordinates required"}
		}
		c, err := geocoder.Geocode(ctx, order.Address)
		if err != nil {
			slog.Warn("geocode failed", "address", order.Address, "err", err)
			return domain.Order{}, &InputError{Msg: "could not geocode"}
		}
		order.Latitude, order.Longitude = &c.Lat, &c.Lon
	}

	created, err := repo.CreateOrders(ctx, []domain.Order{order})
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return created[0], nil
}

type DepotRequest struct {
	Latitude  *float64
	Longitude *float64
	Address   *string
}

// SaveDepot replaces the depot. Missing coordinates are resolved from the address.
func SaveDepot(
	ctx context.Context,
	in DepotRequest,
	repo ports.PlanningRepository,
	geocoder ports.Geocoder,
) (domain.Depot, error) {
	d := domain.Depot{Address: in.Address}

	if in.Latitude != nil && in.Longitude != nil {
		d.Latitude, d.Longitude = *in.Latitude, *in.Longitude
	} else {
		addr := strings.TrimSpace(d.AddressOrEmpty())
		if addr == "" {
			return domain.Depot{}, &InputError{Msg: "coordinates or address required"}
		}
		c, err := geocoder.Geocode(ctx, addr)
		if err != nil {
			slog.Warn("geocode failed", "address", addr, "err", err)
			return domain.Depot{}, &InputError{Msg: "could not geocode"}
		}
		d.Latitude, d.Longitude = c.Lat, c.Lon
	}

	saved, err := repo.SaveDepot(ctx, d)
	if err != nil {
		return domain.Depot{}, fmt.Errorf("save depot: %w", err)
	}
	return saved, nil
}
