package domain

// Represents a registered delivery vehicle.
// ID is assigned by the server and never changes. Active marks whether the
// vehicle takes part in the next solve.
type Vehicle struct {
	ID           int64
	Name         string
	Capacity     float64
	Active       bool
	DefaultReady bool
}
