package services

import (
	"context"
	"fmt"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ml"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
)

// Tonnage report window and the figures used when no tonnage has been recorded.
const (
	TonnageMonths        = 12
	daysPerMonth         = 30
	kmPerVehicleDay      = 4
	FallbackDailyTonnage = 550
	FallbackDailyKm      = 180
)

// Dashboard serves read-only operational aggregates.
type Dashboard struct {
	stats    ports.StatsRepository
	vehicles ports.VehicleRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewDashboard(stats ports.StatsRepository, vehicles ports.VehicleRepository, logger *zap.Logger) *Dashboard {
	return &Dashboard{stats: stats, vehicles: vehicles, logger: logger, now: time.Now}
}

// Stats returns the current counters. Daily counters cover the current UTC day.
func (d *Dashboard) Stats(ctx context.Context) (domain.DashboardStats, error) {
	now := d.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	st, err := d.stats.DashboardStats(ctx, from, from.AddDate(0, 0, 1), ml.FullThreshold)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return st, nil
}

type TonnageReport struct {
	Months          []domain.MonthlyTonnage
	AvgDailyTonnage float64
	AvgDailyKm      float64
}

// Tonnage returns the last TonnageMonths months and daily averages derived
// from them. Distance is approximated from the active fleet size.
func (d *Dashboard) Tonnage(ctx context.Context) (*TonnageReport, error) {
	months, err := d.stats.ListMonthlyTonnage(ctx, TonnageMonths)
	if err != nil {
		return nil, fmt.Errorf("monthly tonnage: %w", err)
	}

	res := &TonnageReport{
		Months:          months,
		AvgDailyTonnage: FallbackDailyTonnage,
		AvgDailyKm:      FallbackDailyKm,
	}
	if len(months) == 0 {
		return res, nil
	}

	total := 0.0
	for _, m := range months {
		total += m.Total
	}
	res.AvgDailyTonnage = total / float64(len(months)) / daysPerMonth

	vehicles, err := d.vehicles.ListActiveVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("monthly tonnage: %w", err)
	}
	res.AvgDailyKm = float64(len(vehicles) * kmPerVehicleDay)

	return res, nil
}

// Simulate estimates the cost of emptying every full container with the
// active fleet. Nothing is written.
func (d *Dashboard) Simulate(ctx context.Context) (domain.CollectionEstimate, error) {
	st, err := d.Stats(ctx)
	if err != nil {
		return domain.CollectionEstimate{}, fmt.Errorf("simulate: %w", err)
	}
	vehicles, err := d.vehicles.ListActiveVehicles(ctx)
	if err != nil {
		return domain.CollectionEstimate{}, fmt.Errorf("simulate: %w", err)
	}

	est := domain.EstimateCollection(st.FullContainers, vehicles)

	d.logger.Info("collection simulated",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int("containers", est.ContainersToCollect),
		zap.Int("vehicles", est.TotalVehicles),
		zap.Float64("hours", est.EstimatedHours),
	)
	return est, nil
}
