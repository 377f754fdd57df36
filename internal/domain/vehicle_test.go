package domain

import (
	"math"
	"testing"
)

func TestVehicleLoadAndClear(t *testing.T) {
	// build test data
	c1 := &Container{ContainerID: 1, CapacityLiters: 1000, FillLevel: 0.9}
	c2 := &Container{ContainerID: 2, CapacityLiters: 2500, FillLevel: 0.5}
	c3 := &Container{ContainerID: 3, CapacityLiters: 800, FillLevel: 0.75}

	v := &Vehicle{VehicleID: 1, Type: VehicleSmall}

	v.Load([]*Container{c1, c2})
	v.Load([]*Container{c3})

	if len(v.Containers) != 3 {
		t.Fatalf("containers = %d, want 3", len(v.Containers))
	}
	if v.Containers[2] != c3 {
		t.Errorf("load order not preserved: got container %d last", v.Containers[2].ContainerID)
	}

	// 0.2 kg per occupied liter
	want := (900 + 1250 + 600) * 0.0002
	if got := v.LoadTons(); math.Abs(got-want) > 1e-9 {
		t.Errorf("LoadTons = %v, want %v", got, want)
	}

	v.Clear()
	if len(v.Containers) != 0 {
		t.Errorf("containers after Clear = %d, want 0", len(v.Containers))
	}
	if v.LoadTons() != 0 {
		t.Errorf("LoadTons after Clear = %v, want 0", v.LoadTons())
	}
}

func TestVehicleTypeSpecs(t *testing.T) {
	tests := []struct {
		name     string
		typ      VehicleType
		capacity float64
		cost     float64
	}{
		{"small", VehicleSmall, 4.5, 500},
		{"large", VehicleLarge, 8, 800},
		{"crane", VehicleCrane, 11.5, 400},
	}

	for _, tt := range tests {
		got, err := ParseVehicleType(tt.name)
		if err != nil {
			t.Fatalf("ParseVehicleType(%q): %v", tt.name, err)
		}
		if got != tt.typ {
			t.Errorf("ParseVehicleType(%q) = %v, want %v", tt.name, got, tt.typ)
		}
		if got.String() != tt.name {
			t.Errorf("%v.String() = %q", got, got.String())
		}
		if got.CapacityTons() != tt.capacity {
			t.Errorf("%s capacity = %v, want %v", tt.name, got.CapacityTons(), tt.capacity)
		}
		if got.HourlyCost() != tt.cost {
			t.Errorf("%s hourly cost = %v, want %v", tt.name, got.HourlyCost(), tt.cost)
		}
	}

	if _, err := ParseVehicleType("bicycle"); err == nil {
		t.Error("expected error for unknown vehicle type")
	}
}
