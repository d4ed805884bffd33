package console

import (
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Input field names.
const (
	FieldDepotLat     = "depot-lat"
	FieldDepotLon     = "depot-lon"
	FieldDepotAddress = "depot-address"

	FieldVehicleName     = "veh-name"
	FieldVehicleCapacity = "veh-capacity"

	FieldOrderID          = "order-id"
	FieldOrderAddress     = "order-address"
	FieldOrderLat         = "order-lat"
	FieldOrderLon         = "order-lon"
	FieldOrderVolume      = "order-volume"
	FieldOrderWindowStart = "order-window-start"
	FieldOrderWindowEnd   = "order-window-end"

	FieldForceAll = "force-all"
)

// Fields is the named-input store shared by the UI and the session.
// Values are kept as typed text, exactly as the operator entered them.
type Fields struct {
	mu     sync.Mutex
	values map[string]string
}

func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

func (f *Fields) Get(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

func (f *Fields) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
}

func (f *Fields) Clear(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		delete(f.values, n)
	}
}

// ValidationError reports a required numeric field that is empty or a
// numeric field that does not parse. No request is sent when it occurs.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %s is required", e.Field)
	}
	return fmt.Sprintf("field %s: %q is not a number", e.Field, e.Value)
}

func requiredFloat(f *Fields, name string) (float64, error) {
	raw := strings.TrimSpace(f.Get(name))
	if raw == "" {
		return 0, &ValidationError{Field: name}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: name, Value: raw}
	}
	return v, nil
}

func optionalFloat(f *Fields, name string) (*float64, error) {
	raw := strings.TrimSpace(f.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ValidationError{Field: name, Value: raw}
	}
	return &v, nil
}

func optionalString(f *Fields, name string) *string {
	raw := strings.TrimSpace(f.Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ReadDepot(f *Fields) (ports.DepotInput, error) {
	lat, err := requiredFloat(f, FieldDepotLat)
	if err != nil {
		return ports.DepotInput{}, err
	}
	lon, err := requiredFloat(f, FieldDepotLon)
	if err != nil {
		return ports.DepotInput{}, err
	}
	return ports.DepotInput{
		Latitude:  lat,
		Longitude: lon,
		Address:   optionalString(f, FieldDepotAddress),
	}, nil
}

func ReadVehicle(f *Fields) (ports.VehicleInput, error) {
	capacity, err := requiredFloat(f, FieldVehicleCapacity)
	if err != nil {
		return ports.VehicleInput{}, err
	}
	return ports.VehicleInput{
		Name:     strings.TrimSpace(f.Get(FieldVehicleName)),
		Capacity: capacity,
	}, nil
}

// ReadOrder reads the order form. Coordinates are sent only as a pair: when
// just one of order-lat and order-lon is filled in, both go out as null and
// the backend places the order by geocoding its address instead. The lone
// value is still parsed, so a typo in it is reported.
func ReadOrder(f *Fields) (ports.OrderInput, error) {
	in := ports.OrderInput{
		ExternalID: strings.TrimSpace(f.Get(FieldOrderID)),
		Address:    strings.TrimSpace(f.Get(FieldOrderAddress)),
	}

	lat, err := optionalFloat(f, FieldOrderLat)
	if err != nil {
		return ports.OrderInput{}, err
	}
	lon, err := optionalFloat(f, FieldOrderLon)
	if err != nil {
		return ports.OrderInput{}, err
	}
	if lat != nil && lon != nil {
		in.Latitude, in.Longitude = lat, lon
	}

	volume, err := optionalFloat(f, FieldOrderVolume)
	if err != nil {
		return ports.OrderInput{}, err
	}
	if volume != nil {
		in.Volume = *volume
	}

	if in.WindowStart, err = optionalFloat(f, FieldOrderWindowStart); err != nil {
		return ports.OrderInput{}, err
	}
	if in.WindowEnd, err = optionalFloat(f, FieldOrderWindowEnd); err != nil {
		return ports.OrderInput{}, err
	}

	return in, nil
}

// ReadForceAll treats anything strconv.ParseBool rejects as false.
func ReadForceAll(f *Fields) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(f.Get(FieldForceAll)))
	return err == nil && v
}

func WriteForceAll(f *Fields, on bool) {
	f.Set(FieldForceAll, strconv.FormatBool(on))
}

func WriteDepot(f *Fields, d domain.Depot) {
	WriteDepotCoordinates(f, d.Coordinates())
	f.Set(FieldDepotAddress, d.AddressOrEmpty())
}

// WriteDepotCoordinates fills only the coordinate fields; the address is kept.
func WriteDepotCoordinates(f *Fields, c domain.Coordinates) {
	f.Set(FieldDepotLat, formatFloat(c.Lat))
	f.Set(FieldDepotLon, formatFloat(c.Lon))
}

func ClearVehicleForm(f *Fields) {
	f.Clear(FieldVehicleName, FieldVehicleCapacity)
}

func ClearOrderForm(f *Fields) {
	f.Clear(
		FieldOrderID,
		FieldOrderAddress,
		FieldOrderLat,
		FieldOrderLon,
		FieldOrderVolume,
		FieldOrderWindowStart,
		FieldOrderWindowEnd,
	)
}
