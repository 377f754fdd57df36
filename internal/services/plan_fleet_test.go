package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"waste-collection-service/internal/adapters/routing"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPlanner(containers []*domain.Container, vehicles []*domain.Vehicle, provider ports.RouteProvider) *FleetPlanner {
	p := NewFleetPlanner(
		&fakeContainers{containers: containers},
		&fakeVehicles{vehicles: vehicles},
		provider,
		FleetPlannerConfig{RouteTimeout: time.Second, Concurrency: 2},
		zap.NewNop(),
	)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC) }
	return p
}

func TestPlanFallsBackWhenRoutingFails(t *testing.T) {
	provider := routing.NewMockRouteProvider(ports.RouteLeg{}, errors.New("osrm down"))
	planner := newPlanner(makeContainers(5, 2), makeVehicles(3), provider)

	plan, err := planner.Plan(context.Background())
	require.NoError(t, err)

	// Vehicle 3 receives nothing and is left out of the plan.
	require.Len(t, plan.Routes, 2)
	assert.Equal(t, int64(1), plan.Routes[0].Vehicle.VehicleID)
	assert.Equal(t, int64(2), plan.Routes[1].Vehicle.VehicleID)
	assert.Len(t, plan.Routes[0].Stops, 5)
	assert.Len(t, plan.Routes[1].Stops, 2)

	first := plan.Routes[0].Result
	assert.Equal(t, domain.RouteEstimated, first.Source)
	assert.InDelta(t, 12.5, first.DistanceKm, 1e-9)
	assert.InDelta(t, 12.5/35*60+25, first.DurationMin, 1e-9)
	assert.Len(t, first.Geometry, 5)

	second := plan.Routes[1].Result
	assert.InDelta(t, 5.0, second.DistanceKm, 1e-9)
	assert.InDelta(t, 5.0/35*60+10, second.DurationMin, 1e-9)

	s := plan.Summary
	assert.Equal(t, 3, s.ActiveVehicles)
	assert.Equal(t, 2, s.VehiclesUsed)
	assert.Equal(t, 7, s.EligibleContainers)
	assert.Equal(t, 7, s.AssignedContainers)
	assert.InDelta(t, 17.5, s.TotalDistanceKm, 1e-9)
	assert.InDelta(t, (first.DurationMin+second.DurationMin)/60, s.TotalTimeHours, 1e-9)
	assert.InDelta(t, 7.0/3.0, s.AvgContainersPerVehicle, 1e-9)
	assert.Equal(t, 0, s.RoutedCount)
	assert.Equal(t, 2, s.EstimatedCount)
	assert.Equal(t, 2, provider.Calls())
}

func TestPlanUsesRoutedResult(t *testing.T) {
	provider := &routing.MockRouteProvider{PerStop: &ports.RouteLeg{DistanceMeters: 1000, DurationSeconds: 120}}
	planner := newPlanner(makeContainers(5), makeVehicles(2), provider)

	plan, err := planner.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan.Routes, 1)

	r := plan.Routes[0]
	assert.Equal(t, domain.RouteRouted, r.Result.Source)
	assert.InDelta(t, 5.0, r.Result.DistanceKm, 1e-9)
	assert.InDelta(t, 600.0/60+25, r.Result.DurationMin, 1e-9)

	// 5 x 1000 L x 0.9 x 0.0002 t on an 8 t vehicle.
	assert.InDelta(t, 0.9, r.LoadTons, 1e-9)
	assert.InDelta(t, 0.9/8*100, r.CapacityUsage, 1e-9)
	assert.Equal(t, 1, plan.Summary.RoutedCount)
}

func TestPlanSingleContainerSkipsRoutingService(t *testing.T) {
	provider := routing.NewMockRouteProvider(ports.RouteLeg{DistanceMeters: 99999}, nil)
	planner := newPlanner(makeContainers(1), makeVehicles(2), provider)

	plan, err := planner.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan.Routes, 1)

	res := plan.Routes[0].Result
	assert.Equal(t, domain.RouteEstimated, res.Source)
	assert.InDelta(t, 2.5, res.DistanceKm, 1e-9)
	assert.InDelta(t, 10.0, res.DurationMin, 1e-9)
	assert.Zero(t, provider.Calls())
}

func TestPlanTimesOutSlowRoutingCalls(t *testing.T) {
	provider := &routing.MockRouteProvider{Delay: time.Second, Leg: ports.RouteLeg{DistanceMeters: 1}}
	planner := newPlanner(makeContainers(3, 3), makeVehicles(2), provider)
	planner.cfg.RouteTimeout = 20 * time.Millisecond

	start := time.Now()
	plan, err := planner.Plan(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)

	for _, r := range plan.Routes {
		assert.Equal(t, domain.RouteEstimated, r.Result.Source)
		assert.InDelta(t, 7.5, r.Result.DistanceKm, 1e-9)
	}
}

func TestPlanAbortsWhenCallerCancels(t *testing.T) {
	provider := &routing.MockRouteProvider{Delay: time.Second, Leg: ports.RouteLeg{DistanceMeters: 1}}
	planner := newPlanner(makeContainers(3, 3), makeVehicles(2), provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := planner.Plan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, plan)
}

func TestPlanPreconditions(t *testing.T) {
	provider := routing.NewMockRouteProvider(ports.RouteLeg{}, nil)

	_, err := newPlanner(makeContainers(2), nil, provider).Plan(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoActiveVehicles)
	assert.ErrorIs(t, err, domain.ErrNoEligibleEntities)

	low := makeContainers(2)
	for _, c := range low {
		c.FillLevel = 0.69
	}
	_, err = newPlanner(low, makeVehicles(1), provider).Plan(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoEligibleContainers)
	assert.ErrorIs(t, err, domain.ErrNoEligibleEntities)
}

func TestPlanClearsPreviousAssignments(t *testing.T) {
	vehicles := makeVehicles(1)
	vehicles[0].Containers = makeContainers(4)
	planner := newPlanner(makeContainers(2), vehicles, routing.NewMockRouteProvider(ports.RouteLeg{}, errors.New("x")))

	plan, err := planner.Plan(context.Background())
	require.NoError(t, err)
	assert.Len(t, plan.Routes[0].Stops, 2)
}
