package domain

import (
	"fmt"
	"strings"
)

// VehicleType is the closed set of fleet vehicle classes.
type VehicleType int

const (
	VehicleSmall VehicleType = iota + 1
	VehicleLarge
	VehicleCrane
)

type vehicleSpec struct {
	name         string
	capacityTons float64
	hourlyCost   float64
}

var vehicleSpecs = map[VehicleType]vehicleSpec{
	VehicleSmall: {name: "small", capacityTons: 4.5, hourlyCost: 500},
	VehicleLarge: {name: "large", capacityTons: 8, hourlyCost: 800},
	VehicleCrane: {name: "crane", capacityTons: 11.5, hourlyCost: 400},
}

func (t VehicleType) String() string {
	if s, ok := vehicleSpecs[t]; ok {
		return s.name
	}
	return fmt.Sprintf("VehicleType(%d)", int(t))
}

func (t VehicleType) CapacityTons() float64 { return vehicleSpecs[t].capacityTons }

func (t VehicleType) HourlyCost() float64 { return vehicleSpecs[t].hourlyCost }

func ParseVehicleType(s string) (VehicleType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, spec := range vehicleSpecs {
		if spec.name == key {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown vehicle type %q", ErrValidation, s)
}

type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleInactive    VehicleStatus = "inactive"
	VehicleMaintenance VehicleStatus = "maintenance"
)

func ParseVehicleStatus(s string) (VehicleStatus, error) {
	switch VehicleStatus(strings.ToLower(strings.TrimSpace(s))) {
	case VehicleActive:
		return VehicleActive, nil
	case VehicleInactive:
		return VehicleInactive, nil
	case VehicleMaintenance:
		return VehicleMaintenance, nil
	}
	return "", fmt.Errorf("%w: unknown vehicle status %q", ErrValidation, s)
}

// Collection vehicle aggregate holding the containers assigned for one planning run.
// Vehicles are read-only reference data; Containers is planning state only.
type Vehicle struct {
	VehicleID  int64
	Plate      string
	Type       VehicleType
	Status     VehicleStatus
	Containers []*Container
}

func (v *Vehicle) CapacityTons() float64 { return v.Type.CapacityTons() }

func (v *Vehicle) HourlyCost() float64 { return v.Type.HourlyCost() }

// Load a neighborhood group onto the vehicle.
// Capacity is reported as usage, not enforced.
func (v *Vehicle) Load(containers []*Container) {
	v.Containers = append(v.Containers, containers...)
}

// LoadTons sums the estimated weight of every assigned container.
func (v *Vehicle) LoadTons() float64 {
	total := 0.0
	for _, c := range v.Containers {
		total += c.EstimatedWeightTons()
	}
	return total
}

// Unload all containers from the vehicle.
func (v *Vehicle) Clear() {
	v.Containers = nil
}
