package domain

// Represents the single origin and return point of every vehicle route.
// At most one Depot exists; saving replaces the previous one.
type Depot struct {
	Latitude  float64
	Longitude float64
	Address   *string
}

func (d Depot) Coordinates() Coordinates {
	return Coordinates{Lat: d.Latitude, Lon: d.Longitude}
}

// AddressOrEmpty returns the free-text address, or "" when none was given.
func (d Depot) AddressOrEmpty() string {
	if d.Address == nil {
		return ""
	}
	return *d.Address
}
