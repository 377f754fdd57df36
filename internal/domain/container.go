package domain

import (
	"fmt"
	"strings"
	"time"
)

// ContainerType is the closed set of waste streams a container accepts.
type ContainerType int

const (
	ContainerGlass ContainerType = iota + 1
	ContainerPaper
	ContainerPlastic
	ContainerMetal
	ContainerOrganic
	ContainerGeneral
)

// ContainerTypes lists every valid type in feature-column order.
var ContainerTypes = []ContainerType{
	ContainerGlass,
	ContainerPaper,
	ContainerPlastic,
	ContainerMetal,
	ContainerOrganic,
	ContainerGeneral,
}

var containerTypeNames = map[ContainerType]string{
	ContainerGlass:   "glass",
	ContainerPaper:   "paper",
	ContainerPlastic: "plastic",
	ContainerMetal:   "metal",
	ContainerOrganic: "organic",
	ContainerGeneral: "general",
}

// Municipal data exports label streams in Turkish; accept those at the boundary too.
var containerTypeAliases = map[string]ContainerType{
	"cam":     ContainerGlass,
	"kağıt":   ContainerPaper,
	"kagit":   ContainerPaper,
	"plastik": ContainerPlastic,
	"organik": ContainerOrganic,
	"genel":   ContainerGeneral,
}

func (t ContainerType) String() string {
	if name, ok := containerTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ContainerType(%d)", int(t))
}

// ParseContainerType validates a type name coming from seeds, the database or the API.
func ParseContainerType(s string) (ContainerType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, name := range containerTypeNames {
		if name == key {
			return t, nil
		}
	}
	if t, ok := containerTypeAliases[key]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: unknown container type %q", ErrValidation, s)
}

type ContainerStatus string

const (
	ContainerActive   ContainerStatus = "active"
	ContainerInactive ContainerStatus = "inactive"
)

func ParseContainerStatus(s string) (ContainerStatus, error) {
	switch ContainerStatus(strings.ToLower(strings.TrimSpace(s))) {
	case ContainerActive:
		return ContainerActive, nil
	case ContainerInactive:
		return ContainerInactive, nil
	}
	return "", fmt.Errorf("%w: unknown container status %q", ErrValidation, s)
}

// Represents a single collection point.
// FillLevel always lies in [0, 1]; it changes only through verified
// high-confidence reports and collection events.
type Container struct {
	ContainerID      int64
	Type             ContainerType
	CapacityLiters   int
	FillLevel        float64
	Location         *Coordinates
	NeighborhoodID   int64
	LastCollectionAt *time.Time
	Status           ContainerStatus
}

// SetFillLevel overwrites the fill level, rejecting values outside [0, 1].
func (c *Container) SetFillLevel(level float64, at time.Time) error {
	if err := ValidateFillLevel(level); err != nil {
		return fmt.Errorf("container %d: %w", c.ContainerID, err)
	}
	c.FillLevel = level
	c.LastCollectionAt = &at
	return nil
}

// EstimatedWeightTons approximates the carried load as 0.2 kg per occupied liter.
func (c *Container) EstimatedWeightTons() float64 {
	return float64(c.CapacityLiters) * c.FillLevel * 0.0002
}

func ValidateFillLevel(level float64) error {
	if level < 0 || level > 1 || level != level {
		return fmt.Errorf("%w: fill level %v outside [0, 1]", ErrValidation, level)
	}
	return nil
}

// Demographics assumed for containers whose neighborhood is unknown.
const (
	DefaultPopulation        = 10000
	DefaultPopulationDensity = 5000.0
	DefaultAreaKm2           = 2.0
)

type Neighborhood struct {
	NeighborhoodID    int64
	Name              string
	Population        int
	PopulationDensity float64
	AreaKm2           float64
}

// FallbackNeighborhood stands in for a missing neighborhood record.
func FallbackNeighborhood(id int64) *Neighborhood {
	return &Neighborhood{
		NeighborhoodID:    id,
		Name:              "unknown",
		Population:        DefaultPopulation,
		PopulationDensity: DefaultPopulationDensity,
		AreaKm2:           DefaultAreaKm2,
	}
}

// Represents a container being emptied by a vehicle.
type CollectionEvent struct {
	EventID          int64
	ContainerID      int64
	VehicleID        *int64
	CollectedAt      time.Time
	FillLevelBefore  float64
	TonnageCollected float64
}

// Aggregate of past collection events for a single container.
type CollectionStats struct {
	AvgTonnage    float64
	AvgFillBefore float64
	EventCount    int
}
