package domain

// Immutable geographic coordinates (WGS84 degrees).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lat, lon], the order map widgets and route geometry use.
func (c Coordinates) LatLng() [2]float64 { return [2]float64{c.Lat, c.Lon} }
