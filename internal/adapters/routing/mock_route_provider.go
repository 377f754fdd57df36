package routing

import (
	"context"
	"sync/atomic"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"
)

// MockRouteProvider returns a fixed leg (or error) and counts calls.
type MockRouteProvider struct {
	Leg   ports.RouteLeg
	Err   error
	Delay time.Duration
	// PerStop, when set, derives the leg from the stop count instead of Leg.
	PerStop *ports.RouteLeg

	calls atomic.Int64
}

func NewMockRouteProvider(leg ports.RouteLeg, err error) *MockRouteProvider {
	return &MockRouteProvider{Leg: leg, Err: err}
}

func (p *MockRouteProvider) Route(ctx context.Context, stops []domain.Coordinates) (ports.RouteLeg, error) {
	p.calls.Add(1)

	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ports.RouteLeg{}, ctx.Err()
		case <-timer.C:
		}
	}

	if p.Err != nil {
		return ports.RouteLeg{}, p.Err
	}

	if p.PerStop != nil {
		n := float64(len(stops))
		return ports.RouteLeg{
			DistanceMeters:  p.PerStop.DistanceMeters * n,
			DurationSeconds: p.PerStop.DurationSeconds * n,
			Geometry:        stops,
		}, nil
	}
	return p.Leg, nil
}

func (p *MockRouteProvider) Calls() int { return int(p.calls.Load()) }
