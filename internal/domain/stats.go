package domain

import (
	"fmt"
	"time"
)

// Point-in-time counters shown on the operations dashboard.
type DashboardStats struct {
	TotalContainers  int
	FullContainers   int
	TotalVehicles    int
	Neighborhoods    int
	TodayReports     int
	TodayCollections int
	MonthTonnage     float64
	TotalReports     int
	VerifiedReports  int
}

// FillRate is the share of active containers at or above the full threshold.
func (s DashboardStats) FillRate() float64 {
	return ratio(s.FullContainers, s.TotalContainers)
}

func (s DashboardStats) VerificationRate() float64 {
	return ratio(s.VerifiedReports, s.TotalReports)
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Municipal tonnage totals for one calendar month, split by container placement.
type MonthlyTonnage struct {
	Month       string
	Surface     float64
	Underground float64
	Total       float64
}

const MonthLayout = "2006-01"

// ParseMonth validates a YYYY-MM month key.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q must be YYYY-MM", ErrValidation, s)
	}
	return t, nil
}

// Rough cost and duration of emptying every full container with the active fleet.
type CollectionEstimate struct {
	TotalVehicles        int
	SmallTrucks          int
	LargeTrucks          int
	CraneVehicles        int
	ContainersToCollect  int
	EstimatedHours       float64
	EstimatedHourlyCost  float64
	EfficiencyPercentage float64
}

// Throughput rule of thumb behind EstimateCollection.
const (
	ShiftHours           = 8
	TonsPerFullContainer = 0.5
	IdleEstimateHours    = 24
)

// EstimateCollection sizes the work of emptying full containers with the given fleet.
// An empty fleet yields IdleEstimateHours.
func EstimateCollection(fullContainers int, vehicles []*Vehicle) CollectionEstimate {
	est := CollectionEstimate{
		TotalVehicles:       len(vehicles),
		ContainersToCollect: fullContainers,
	}

	capacityPerShift := 0.0
	for _, v := range vehicles {
		switch v.Type {
		case VehicleSmall:
			est.SmallTrucks++
		case VehicleLarge:
			est.LargeTrucks++
		case VehicleCrane:
			est.CraneVehicles++
		}
		capacityPerShift += v.CapacityTons() * ShiftHours
		est.EstimatedHourlyCost += v.HourlyCost()
	}

	est.EstimatedHours = IdleEstimateHours
	if capacityPerShift > 0 {
		est.EstimatedHours = float64(fullContainers) * TonsPerFullContainer / capacityPerShift * ShiftHours
	}
	est.EfficiencyPercentage = min(100, 100-est.EstimatedHours/IdleEstimateHours*100)

	return est
}
