package remote

import (
	"bytes"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Response records use pointer fields so a missing member can be told apart
// from a zero value. toDomain rejects anything required that is absent.

type wireHealth struct {
	Status      *string `json:"status"`
	GraphLoaded *bool   `json:"graph_loaded"`
}

func (w wireHealth) toPort() (ports.Health, error) {
	if w.GraphLoaded == nil {
		return ports.Health{}, missing("graph_loaded")
	}
	return ports.Health{GraphLoaded: *w.GraphLoaded}, nil
}

type wireDepot struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
}

func (w wireDepot) toDomain() (domain.Depot, error) {
	if w.Latitude == nil {
		return domain.Depot{}, missing("latitude")
	}
	if w.Longitude == nil {
		return domain.Depot{}, missing("longitude")
	}
	return domain.Depot{Latitude: *w.Latitude, Longitude: *w.Longitude, Address: w.Address}, nil
}

type wireDepotInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address"`
}

type wireVehicle struct {
	ID           *int64   `json:"id"`
	Name         *string  `json:"name"`
	Capacity     *float64 `json:"capacity"`
	Active       *bool    `json:"active"`
	DefaultReady *bool    `json:"default_ready"`
}

func (w wireVehicle) toDomain() (domain.Vehicle, error) {
	switch {
	case w.ID == nil:
		return domain.Vehicle{}, missing("id")
	case w.Name == nil:
		return domain.Vehicle{}, missing("name")
	case w.Capacity == nil:
		return domain.Vehicle{}, missing("capacity")
	case w.Active == nil:
		return domain.Vehicle{}, missing("active")
	}

	v := domain.Vehicle{ID: *w.ID, Name: *w.Name, Capacity: *w.Capacity, Active: *w.Active}
	if w.DefaultReady != nil {
		v.DefaultReady = *w.DefaultReady
	}
	return v, nil
}

type wireVehicleInput struct {
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"`
}

type wireOrder struct {
	ID          *int64   `json:"id"`
	ExternalID  *string  `json:"external_id"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Volume      *float64 `json:"volume"`
	WindowStart *float64 `json:"window_start"`
	WindowEnd   *float64 `json:"window_end"`
}

func (w wireOrder) toDomain() (domain.Order, error) {
	switch {
	case w.ID == nil:
		return domain.Order{}, missing("id")
	case w.ExternalID == nil:
		return domain.Order{}, missing("external_id")
	case w.Volume == nil:
		return domain.Order{}, missing("volume")
	case (w.Latitude == nil) != (w.Longitude == nil):
		return domain.Order{}, errors.New("latitude and longitude must both be set or both be null")
	}

	o := domain.Order{
		ID:          *w.ID,
		ExternalID:  *w.ExternalID,
		Latitude:    w.Latitude,
		Longitude:   w.Longitude,
		Volume:      *w.Volume,
		WindowStart: w.WindowStart,
		WindowEnd:   w.WindowEnd,
	}
	if w.Address != nil {
		o.Address = *w.Address
	}
	return o, nil
}

type wireOrderInput struct {
	ExternalID  string   `json:"external_id"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Volume      float64  `json:"volume"`
	WindowStart *float64 `json:"window_start"`
	WindowEnd   *float64 `json:"window_end"`
}

type wireSolveRequest struct {
	ForceAll bool    `json:"force_all"`
	Vehicles []int64 `json:"vehicles"`
}

type wireSolveResponse struct {
	Routes *[]wireRoute `json:"routes"`
}

func (w wireSolveResponse) toDomain() ([]domain.Route, error) {
	if w.Routes == nil {
		return nil, missing("routes")
	}

	out := make([]domain.Route, 0, len(*w.Routes))
	for i, r := range *w.Routes {
		route, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("route #%d: %w", i, err)
		}
		out = append(out, route)
	}
	return out, nil
}

type wireRouteVehicle struct {
	ID       *int64   `json:"id"`
	Name     *string  `json:"name"`
	Capacity *float64 `json:"capacity"`
}

type wireRoute struct {
	Vehicle       *wireRouteVehicle `json:"vehicle"`
	Stops         *[]stopLabel      `json:"stops"`
	Geometry      *[][][]float64    `json:"geometry"`
	DistanceKm    *float64          `json:"distance_km"`
	TravelTimeMin *float64          `json:"travel_time_min"`
}

func (w wireRoute) toDomain() (domain.Route, error) {
	switch {
	case w.Vehicle == nil:
		return domain.Route{}, missing("vehicle")
	case w.Vehicle.ID == nil:
		return domain.Route{}, missing("vehicle.id")
	case w.Vehicle.Name == nil:
		return domain.Route{}, missing("vehicle.name")
	case w.Stops == nil:
		return domain.Route{}, missing("stops")
	case w.Geometry == nil:
		return domain.Route{}, missing("geometry")
	case w.DistanceKm == nil:
		return domain.Route{}, missing("distance_km")
	case w.TravelTimeMin == nil:
		return domain.Route{}, missing("travel_time_min")
	}

	rv := domain.RouteVehicle{ID: *w.Vehicle.ID, Name: *w.Vehicle.Name}
	if w.Vehicle.Capacity != nil {
		rv.Capacity = *w.Vehicle.Capacity
	}

	stops := make([]string, 0, len(*w.Stops))
	for _, s := range *w.Stops {
		stops = append(stops, string(s))
	}

	segments := make([]domain.Segment, 0, len(*w.Geometry))
	for si, seg := range *w.Geometry {
		points := make(domain.Segment, 0, len(seg))
		for pi, pair := range seg {
			// Geometry pairs are [lat, lon].
			if len(pair) != 2 {
				return domain.Route{}, fmt.Errorf("geometry[%d][%d]: want 2 numbers, got %d", si, pi, len(pair))
			}
			points = append(points, domain.Coordinates{Lat: pair[0], Lon: pair[1]})
		}
		segments = append(segments, points)
	}

	return domain.Route{
		Vehicle:       rv,
		Stops:         stops,
		Geometry:      segments,
		DistanceKm:    *w.DistanceKm,
		TravelTimeMin: *w.TravelTimeMin,
	}, nil
}

// stopLabel accepts a stop given either as a string or as a number (an order id).
type stopLabel string

func (s *stopLabel) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = stopLabel(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil || n == "" {
		return fmt.Errorf("stop must be a string or number, got %s", b)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*s = stopLabel(strconv.FormatInt(i, 10))
		return nil
	}
	*s = stopLabel(n.String())
	return nil
}

func missing(field string) error {
	return fmt.Errorf("missing required field %q", field)
}
