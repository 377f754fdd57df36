package domain

import "time"

// RouteSource tells whether route metrics came from the routing service or the
// synthetic estimate.
type RouteSource string

const (
	RouteRouted    RouteSource = "routed"
	RouteEstimated RouteSource = "estimated"
)

// RouteResult is either a routed path or a synthetic estimate; Source says which.
type RouteResult struct {
	Source      RouteSource
	DistanceKm  float64
	DurationMin float64
	Geometry    []Coordinates
}

func Routed(distanceKm, durationMin float64, geometry []Coordinates) RouteResult {
	return RouteResult{Source: RouteRouted, DistanceKm: distanceKm, DurationMin: durationMin, Geometry: geometry}
}

func Estimated(distanceKm, durationMin float64, geometry []Coordinates) RouteResult {
	return RouteResult{Source: RouteEstimated, DistanceKm: distanceKm, DurationMin: durationMin, Geometry: geometry}
}

// Represents the planned collection route for a single vehicle.
// Stops are visited in assignment order.
type VehicleRoute struct {
	Vehicle       *Vehicle
	Stops         []*Container
	Result        RouteResult
	LoadTons      float64
	CapacityUsage float64
}

type FleetSummary struct {
	ActiveVehicles          int
	VehiclesUsed            int
	EligibleContainers      int
	AssignedContainers      int
	TotalDistanceKm         float64
	TotalTimeHours          float64
	AvgContainersPerVehicle float64
	RoutedCount             int
	EstimatedCount          int
}

// Output of one fleet assignment run. It is planning data and has no side effects.
type FleetPlan struct {
	GeneratedAt time.Time
	Summary     FleetSummary
	Routes      []*VehicleRoute
}
