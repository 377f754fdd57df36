package services

import (
	"context"
	"fmt"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EligibleFillLevel is the minimum fill level for a container to be collected.
const EligibleFillLevel = 0.70

type FleetPlannerConfig struct {
	// RouteTimeout bounds each routing-service call.
	RouteTimeout time.Duration
	// Concurrency caps in-flight routing calls.
	Concurrency int
}

// FleetPlanner assigns over-threshold containers to the active fleet and
// computes one route per loaded vehicle.
type FleetPlanner struct {
	containers ports.ContainerRepository
	vehicles   ports.VehicleRepository
	provider   ports.RouteProvider
	cfg        FleetPlannerConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewFleetPlanner(
	containers ports.ContainerRepository,
	vehicles ports.VehicleRepository,
	provider ports.RouteProvider,
	cfg FleetPlannerConfig,
	logger *zap.Logger,
) *FleetPlanner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	return &FleetPlanner{
		containers: containers,
		vehicles:   vehicles,
		provider:   provider,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Plan reads the current fleet and container state and produces per-vehicle routes.
//
// Routing-service failures never fail the plan: each affected vehicle gets
// the synthetic estimate instead. Cancelling ctx aborts the plan.
func (p *FleetPlanner) Plan(ctx context.Context) (_ *domain.FleetPlan, err error) {
	defer obs.Time(ctx, p.logger, "fleet.Plan")(&err)

	vehicles, err := p.vehicles.ListActiveVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan fleet: list vehicles: %w", err)
	}
	if len(vehicles) == 0 {
		return nil, domain.ErrNoActiveVehicles
	}

	containers, err := p.containers.ListEligibleContainers(ctx, EligibleFillLevel)
	if err != nil {
		return nil, fmt.Errorf("plan fleet: list containers: %w", err)
	}
	if len(containers) == 0 {
		return nil, domain.ErrNoEligibleContainers
	}

	for _, v := range vehicles {
		v.Clear()
	}
	if err := AssignRoundRobin(vehicles, GroupByNeighborhood(containers)); err != nil {
		return nil, fmt.Errorf("plan fleet: %w", err)
	}

	loaded := make([]*domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if len(v.Containers) > 0 {
			loaded = append(loaded, v)
		}
	}

	// Each vehicle's routing call is independent; a slow or failing call only
	// degrades that vehicle's route. Only the caller giving up stops the plan.
	routes := make([]*domain.VehicleRoute, len(loaded))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, v := range loaded {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			routes[i] = p.routeVehicle(gctx, v)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("plan fleet: %w", err)
	}

	plan := &domain.FleetPlan{
		GeneratedAt: p.now(),
		Routes:      routes,
		Summary:     summarize(routes, len(vehicles), len(containers)),
	}

	p.logger.Info("fleet plan built",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int("vehicles_used", plan.Summary.VehiclesUsed),
		zap.Int("containers", plan.Summary.AssignedContainers),
		zap.Int("estimated_routes", plan.Summary.EstimatedCount),
	)

	return plan, nil
}

func (p *FleetPlanner) routeVehicle(ctx context.Context, v *domain.Vehicle) *domain.VehicleRoute {
	result, err := ResolveRoute(ctx, p.provider, v.Containers, p.cfg.RouteTimeout)
	if err != nil {
		p.logger.Warn("routing failed, using estimate",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Int64("vehicle_id", v.VehicleID),
			zap.Int("stops", len(v.Containers)),
			zap.Error(err),
		)
	}
	obs.RouteResults.WithLabelValues(string(result.Source)).Inc()

	load := v.LoadTons()
	usage := 0.0
	if capTons := v.CapacityTons(); capTons > 0 {
		usage = load / capTons * 100
	}

	return &domain.VehicleRoute{
		Vehicle:       v,
		Stops:         v.Containers,
		Result:        result,
		LoadTons:      load,
		CapacityUsage: usage,
	}
}

func summarize(routes []*domain.VehicleRoute, activeVehicles, eligible int) domain.FleetSummary {
	s := domain.FleetSummary{
		ActiveVehicles:     activeVehicles,
		VehiclesUsed:       len(routes),
		EligibleContainers: eligible,
	}

	totalMinutes := 0.0
	for _, r := range routes {
		s.AssignedContainers += len(r.Stops)
		s.TotalDistanceKm += r.Result.DistanceKm
		totalMinutes += r.Result.DurationMin
		if r.Result.Source == domain.RouteRouted {
			s.RoutedCount++
		} else {
			s.EstimatedCount++
		}
	}
	s.TotalTimeHours = totalMinutes / 60
	if activeVehicles > 0 {
		s.AvgContainersPerVehicle = float64(eligible) / float64(activeVehicles)
	}

	return s
}
