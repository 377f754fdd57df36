package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"
)

// Routing constants for the synthetic estimate and service time.
const (
	FallbackKmPerStop     = 2.5
	FallbackSpeedKmh      = 35.0
	ServiceMinutesPerStop = 5.0
	SingleStopKm          = 2.5
	SingleStopMinutes     = 10.0
)

// ResolveRoute turns an ordered list of stops into route metrics.
//
// A single stop never reaches the routing service. For two or more stops the
// provider is asked once, bounded by timeout; on any failure the result is the
// synthetic estimate. The returned result is always usable: the error only
// reports why an estimate was used instead of a routed path.
func ResolveRoute(
	ctx context.Context,
	provider ports.RouteProvider,
	stops []*domain.Container,
	timeout time.Duration,
) (domain.RouteResult, error) {
	coords := make([]domain.Coordinates, 0, len(stops))
	for _, c := range stops {
		if c.Location == nil {
			return EstimateRoute(len(stops), nil), fmt.Errorf("resolve route: container %d has no coordinates", c.ContainerID)
		}
		coords = append(coords, *c.Location)
	}

	if len(coords) < 2 {
		return domain.Estimated(SingleStopKm, SingleStopMinutes, coords), nil
	}

	if provider == nil {
		return EstimateRoute(len(coords), coords), errors.New("resolve route: no routing provider configured")
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	leg, err := provider.Route(callCtx, coords)
	if err != nil {
		return EstimateRoute(len(coords), coords), fmt.Errorf("resolve route: %w", err)
	}

	geometry := leg.Geometry
	if len(geometry) == 0 {
		geometry = coords
	}
	n := float64(len(coords))
	return domain.Routed(leg.DistanceMeters/1000, leg.DurationSeconds/60+ServiceMinutesPerStop*n, geometry), nil
}

// EstimateRoute is the synthetic fallback: a fixed distance per stop driven at
// a fixed average speed, plus service time per stop. The geometry is the
// straight-line sequence of stops.
func EstimateRoute(stops int, coords []domain.Coordinates) domain.RouteResult {
	n := float64(stops)
	distance := FallbackKmPerStop * n
	minutes := distance/FallbackSpeedKmh*60 + ServiceMinutesPerStop*n
	return domain.Estimated(distance, minutes, coords)
}
