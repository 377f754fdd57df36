package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"waste-collection-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStats struct {
	stats     domain.DashboardStats
	months    []domain.MonthlyTonnage
	err       error
	from, to  time.Time
	threshold float64
	limit     int
}

func (f *fakeStats) DashboardStats(_ context.Context, from, to time.Time, threshold float64) (domain.DashboardStats, error) {
	f.from, f.to, f.threshold = from, to, threshold
	return f.stats, f.err
}

func (f *fakeStats) ListMonthlyTonnage(_ context.Context, limit int) ([]domain.MonthlyTonnage, error) {
	f.limit = limit
	return f.months, f.err
}

func newTestDashboard(stats *fakeStats, vehicles []*domain.Vehicle) *Dashboard {
	d := NewDashboard(stats, &fakeVehicles{vehicles: vehicles}, zap.NewNop())
	d.now = func() time.Time { return time.Date(2024, 5, 1, 23, 30, 0, 0, time.FixedZone("TRT", 3*3600)) }
	return d
}

func TestDashboardStatsCoversCurrentUTCDay(t *testing.T) {
	stats := &fakeStats{stats: domain.DashboardStats{TotalContainers: 10, FullContainers: 4}}
	d := newTestDashboard(stats, nil)

	got, err := d.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, got.FullContainers)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), stats.from)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), stats.to)
	assert.InDelta(t, 0.75, stats.threshold, 1e-12)
}

func TestTonnageAverages(t *testing.T) {
	stats := &fakeStats{months: []domain.MonthlyTonnage{
		{Month: "2024-04", Surface: 10000, Underground: 8000, Total: 18000},
		{Month: "2024-03", Surface: 9000, Underground: 6000, Total: 15000},
	}}
	d := newTestDashboard(stats, []*domain.Vehicle{{VehicleID: 1}, {VehicleID: 2}, {VehicleID: 3}})

	rep, err := d.Tonnage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, TonnageMonths, stats.limit)
	require.Len(t, rep.Months, 2)
	assert.InDelta(t, 16500.0/30, rep.AvgDailyTonnage, 1e-9)
	assert.InDelta(t, 12.0, rep.AvgDailyKm, 1e-9)
}

func TestTonnageWithoutHistoryUsesFallback(t *testing.T) {
	d := newTestDashboard(&fakeStats{}, nil)

	rep, err := d.Tonnage(context.Background())
	require.NoError(t, err)

	assert.Empty(t, rep.Months)
	assert.InDelta(t, FallbackDailyTonnage, rep.AvgDailyTonnage, 1e-9)
	assert.InDelta(t, FallbackDailyKm, rep.AvgDailyKm, 1e-9)
}

func TestSimulateUsesFullContainersAndActiveFleet(t *testing.T) {
	stats := &fakeStats{stats: domain.DashboardStats{FullContainers: 20}}
	d := newTestDashboard(stats, []*domain.Vehicle{
		{VehicleID: 1, Type: domain.VehicleSmall},
		{VehicleID: 2, Type: domain.VehicleLarge},
	})

	est, err := d.Simulate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, est.ContainersToCollect)
	assert.Equal(t, 2, est.TotalVehicles)
	assert.InDelta(t, 1300.0, est.EstimatedHourlyCost, 1e-9)
	assert.InDelta(t, 20*0.5/(12.5*8)*8, est.EstimatedHours, 1e-9)
}

func TestSimulatePropagatesStoreErrors(t *testing.T) {
	boom := errors.New("db gone")
	d := newTestDashboard(&fakeStats{err: boom}, nil)

	_, err := d.Simulate(context.Background())
	assert.ErrorIs(t, err, boom)
}
