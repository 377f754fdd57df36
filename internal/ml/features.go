package ml

import (
	"fmt"
	"waste-collection-service/internal/domain"
)

const (
	LargeCapacityLiters  = 1100
	MediumCapacityLiters = 800
	HighDensityPerKm2    = 10000

	// FullThreshold is the fill level at which a container counts as full.
	FullThreshold = 0.75
)

// History fallbacks used when a container has no collection events.
const (
	DefaultAvgTonnage      = 0.5
	DefaultAvgFillBefore   = 0.5
	DefaultCollectionCount = 10
)

// FeatureColumns is the column order used for newly trained snapshots.
var FeatureColumns = []string{
	"capacity_liters",
	"population_density",
	"type_glass",
	"type_paper",
	"type_plastic",
	"type_metal",
	"type_organic",
	"type_general",
	"capacity_large",
	"capacity_medium",
	"density_high",
	"avg_tonnage",
	"avg_fill_before",
	"collection_count",
}

// FeatureInput holds everything a feature vector can be derived from.
type FeatureInput struct {
	Type              domain.ContainerType
	CapacityLiters    int
	PopulationDensity float64
	Stats             domain.CollectionStats
}

// WithHistoryDefaults fills missing history aggregates with the fixed fallbacks.
func WithHistoryDefaults(stats domain.CollectionStats, ok bool) domain.CollectionStats {
	if !ok || stats.EventCount == 0 {
		return domain.CollectionStats{
			AvgTonnage:    DefaultAvgTonnage,
			AvgFillBefore: DefaultAvgFillBefore,
			EventCount:    DefaultCollectionCount,
		}
	}
	if stats.AvgTonnage == 0 {
		stats.AvgTonnage = DefaultAvgTonnage
	}
	if stats.AvgFillBefore == 0 {
		stats.AvgFillBefore = DefaultAvgFillBefore
	}
	return stats
}

// Vector builds the feature vector for in, in the given column order.
func Vector(in FeatureInput, columns []string) ([]float64, error) {
	out := make([]float64, len(columns))
	for i, col := range columns {
		v, err := feature(in, col)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func feature(in FeatureInput, col string) (float64, error) {
	switch col {
	case "capacity_liters":
		return float64(in.CapacityLiters), nil
	case "population_density":
		return in.PopulationDensity, nil
	case "type_glass":
		return indicator(in.Type == domain.ContainerGlass), nil
	case "type_paper":
		return indicator(in.Type == domain.ContainerPaper), nil
	case "type_plastic":
		return indicator(in.Type == domain.ContainerPlastic), nil
	case "type_metal":
		return indicator(in.Type == domain.ContainerMetal), nil
	case "type_organic":
		return indicator(in.Type == domain.ContainerOrganic), nil
	case "type_general":
		return indicator(in.Type == domain.ContainerGeneral), nil
	case "capacity_large":
		return indicator(in.CapacityLiters >= LargeCapacityLiters), nil
	case "capacity_medium":
		return indicator(in.CapacityLiters >= MediumCapacityLiters && in.CapacityLiters < LargeCapacityLiters), nil
	case "density_high":
		return indicator(in.PopulationDensity > HighDensityPerKm2), nil
	case "avg_tonnage":
		return in.Stats.AvgTonnage, nil
	case "avg_fill_before":
		return in.Stats.AvgFillBefore, nil
	case "collection_count":
		return float64(in.Stats.EventCount), nil
	}
	return 0, fmt.Errorf("unknown feature column %q", col)
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Label is the training target: 1 when the container is full.
func Label(fillLevel float64) int {
	if fillLevel >= FullThreshold {
		return 1
	}
	return 0
}
