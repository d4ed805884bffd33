package domain

// A contiguous drawable piece of a route's geometry.
type Segment []Coordinates

// The vehicle a route was assigned to, as echoed by the solver.
type RouteVehicle struct {
	ID       int64
	Name     string
	Capacity float64
}

// Represents one vehicle's planned visit sequence.
// Stops are in visit order. Geometry segments are not guaranteed to be
// contiguous: a route may be drawn as several disjoint polylines.
// A Route is a solve result and is never persisted by the console.
type Route struct {
	Vehicle       RouteVehicle
	Stops         []string
	Geometry      []Segment
	DistanceKm    float64
	TravelTimeMin float64
}
