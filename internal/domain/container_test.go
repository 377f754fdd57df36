package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestContainerSetFillLevel(t *testing.T) {
	c := &Container{ContainerID: 7, FillLevel: 0.3}
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := c.SetFillLevel(0.85, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.FillLevel != 0.85 {
		t.Errorf("FillLevel = %v, want 0.85", c.FillLevel)
	}
	if c.LastCollectionAt == nil || !c.LastCollectionAt.Equal(at) {
		t.Errorf("LastCollectionAt = %v, want %v", c.LastCollectionAt, at)
	}

	for _, bad := range []float64{-0.01, 1.01, math.NaN()} {
		err := c.SetFillLevel(bad, at.Add(time.Hour))
		if !errors.Is(err, ErrValidation) {
			t.Errorf("SetFillLevel(%v) err = %v, want ErrValidation", bad, err)
		}
	}

	// rejected writes leave the container untouched
	if c.FillLevel != 0.85 || !c.LastCollectionAt.Equal(at) {
		t.Errorf("container changed after rejected write: %+v", c)
	}
}

func TestParseContainerType(t *testing.T) {
	tests := []struct {
		in   string
		want ContainerType
	}{
		{"glass", ContainerGlass},
		{" Paper ", ContainerPaper},
		{"plastik", ContainerPlastic},
		{"kağıt", ContainerPaper},
		{"genel", ContainerGeneral},
		{"METAL", ContainerMetal},
	}
	for _, tt := range tests {
		got, err := ParseContainerType(tt.in)
		if err != nil {
			t.Errorf("ParseContainerType(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseContainerType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseContainerType("hazardous"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown type err = %v, want ErrValidation", err)
	}
}

func TestUserApplyTrust(t *testing.T) {
	u := &User{UserID: 1, TrustScore: InitialTrustScore}

	u.ApplyTrust(TrustUpdate{Outcome: OutcomeVerified, NewTrust: 0.55})
	u.ApplyTrust(TrustUpdate{Outcome: OutcomePending, NewTrust: 0.55})
	u.ApplyTrust(TrustUpdate{Outcome: OutcomeRejected, NewTrust: 0.52})

	if u.TrustScore != 0.52 {
		t.Errorf("TrustScore = %v, want 0.52", u.TrustScore)
	}
	if u.TotalReports != 3 || u.AccurateReports != 1 {
		t.Errorf("reports = %d/%d, want 1/3", u.AccurateReports, u.TotalReports)
	}
	if got := u.AccuracyRate(); math.Abs(got-100.0/3) > 1e-9 {
		t.Errorf("AccuracyRate = %v", got)
	}

	if (&User{}).AccuracyRate() != 0 {
		t.Error("AccuracyRate with no reports should be 0")
	}
}

func TestNoEligibleErrorsShareParent(t *testing.T) {
	if !errors.Is(ErrNoActiveVehicles, ErrNoEligibleEntities) {
		t.Error("ErrNoActiveVehicles should wrap ErrNoEligibleEntities")
	}
	if !errors.Is(ErrNoEligibleContainers, ErrNoEligibleEntities) {
		t.Error("ErrNoEligibleContainers should wrap ErrNoEligibleEntities")
	}
}

func TestCoordinatesString(t *testing.T) {
	c := Coordinates{Lon: 29.0612345678, Lat: 40.19}
	if got, want := c.String(), "29.061235,40.190000"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
