package ports

import (
	"context"
	"waste-collection-service/internal/domain"
)

// Ordered drivable path through a list of stops.
type RouteLeg struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        []domain.Coordinates
}

// Contract for sequencing stops into a drivable route.
// Implementations talk to unreliable external services; callers must be ready
// for any error and fall back.
type RouteProvider interface {
	// Return the route visiting stops in the given order.
	Route(ctx context.Context, stops []domain.Coordinates) (RouteLeg, error)
}

// Cache of previously resolved legs keyed by the stop sequence.
type RouteCache interface {
	Get(ctx context.Context, key string) (RouteLeg, bool, error)
	Put(ctx context.Context, key string, leg RouteLeg) error
}
