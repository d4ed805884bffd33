package domain

// Represents one delivery demand.
//
// Latitude/Longitude are nil until the address has been resolved by the
// backend. Volume consumes vehicle capacity. WindowStart/WindowEnd bound the
// delivery time as minute offsets; nil means unbounded.
type Order struct {
	ID          int64
	ExternalID  string
	Address     string
	Latitude    *float64
	Longitude   *float64
	Volume      float64
	WindowStart *float64
	WindowEnd   *float64
}

// Located reports whether the order has both coordinates.
func (o Order) Located() bool {
	return o.Latitude != nil && o.Longitude != nil
}

// Coordinates returns the order location; ok is false when the order is not located.
func (o Order) Coordinates() (c Coordinates, ok bool) {
	if !o.Located() {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *o.Latitude, Lon: *o.Longitude}, true
}
