package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/platform/db"
)

// Seed is the JSON shape of a reference-data export.
type Seed struct {
	Neighborhoods    []NeighborhoodSeed `json:"neighborhoods"`
	Containers       []ContainerSeed    `json:"containers"`
	Users            []UserSeed         `json:"users"`
	Vehicles         []VehicleSeed      `json:"vehicles"`
	CollectionEvents []CollectionSeed   `json:"collection_events"`
	MonthlyTonnage   []TonnageSeed      `json:"monthly_tonnage"`
}

type NeighborhoodSeed struct {
	NeighborhoodID    int64   `json:"neighborhood_id"`
	Name              string  `json:"name"`
	Population        int     `json:"population"`
	PopulationDensity float64 `json:"population_density"`
	AreaKm2           float64 `json:"area_km2"`
}

type ContainerSeed struct {
	ContainerID        int64      `json:"container_id"`
	ContainerType      string     `json:"container_type"`
	CapacityLiters     int        `json:"capacity_liters"`
	FillLevel          float64    `json:"fill_level"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	NeighborhoodID     int64      `json:"neighborhood_id"`
	Status             string     `json:"status"`
	LastCollectionDate *time.Time `json:"last_collection_date"`
}

type UserSeed struct {
	UserID     int64    `json:"user_id"`
	Name       string   `json:"name"`
	TrustScore *float64 `json:"trust_score"`
}

type VehicleSeed struct {
	VehicleID   int64  `json:"vehicle_id"`
	PlateNumber string `json:"plate_number"`
	VehicleType string `json:"vehicle_type"`
	Status      string `json:"status"`
}

type CollectionSeed struct {
	ContainerID      int64     `json:"container_id"`
	VehicleID        *int64    `json:"vehicle_id"`
	CollectionDate   time.Time `json:"collection_date"`
	FillLevelBefore  float64   `json:"fill_level_before"`
	TonnageCollected float64   `json:"tonnage_collected"`
}

type TonnageSeed struct {
	Month       string  `json:"month"`
	Surface     float64 `json:"surface_tonnage"`
	Underground float64 `json:"underground_tonnage"`
	Total       float64 `json:"total_tonnage"`
}

// Populate the database with reference data from a JSON file.
func SeedFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	return ApplySeed(ctx, conn, dialect, data)
}

// ApplySeed validates and upserts every record in one transaction.
// Existing containers keep their fill level and last collection date, users keep
// their trust record, and collection events are keyed by container and date,
// so re-applying a seed never overwrites live state.
func ApplySeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, data Seed) error {
	if err := data.validate(); err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, n := range data.Neighborhoods {
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO neighborhoods (neighborhood_id, neighborhood_name, population, population_density, area_km2)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (neighborhood_id) DO UPDATE
		SET neighborhood_name = EXCLUDED.neighborhood_name,
			population = EXCLUDED.population,
			population_density = EXCLUDED.population_density,
			area_km2 = EXCLUDED.area_km2;
		`), n.NeighborhoodID, strings.TrimSpace(n.Name), n.Population, n.PopulationDensity, n.AreaKm2)
		if err != nil {
			return fmt.Errorf("seed: insert neighborhood_id=%d: %w", n.NeighborhoodID, err)
		}
	}

	for _, c := range data.Containers {
		ct, _ := domain.ParseContainerType(c.ContainerType)
		status := string(domain.ContainerActive)
		if c.Status != "" {
			s, _ := domain.ParseContainerStatus(c.Status)
			status = string(s)
		}
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO containers (
			container_id, container_type, capacity_liters, current_fill_level,
			latitude, longitude, neighborhood_id, last_collection_date, status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (container_id) DO UPDATE
		SET container_type = EXCLUDED.container_type,
			capacity_liters = EXCLUDED.capacity_liters,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			neighborhood_id = EXCLUDED.neighborhood_id,
			status = EXCLUDED.status;
		`),
			c.ContainerID, ct.String(), c.CapacityLiters, c.FillLevel,
			nullFloat(c.Latitude), nullFloat(c.Longitude), c.NeighborhoodID,
			nullTime(c.LastCollectionDate), status,
		)
		if err != nil {
			return fmt.Errorf("seed: insert container_id=%d: %w", c.ContainerID, err)
		}
	}

	for _, u := range data.Users {
		trust := domain.InitialTrustScore
		if u.TrustScore != nil {
			trust = *u.TrustScore
		}
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO users (user_id, name, trust_score)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name;
		`), u.UserID, strings.TrimSpace(u.Name), trust)
		if err != nil {
			return fmt.Errorf("seed: insert user_id=%d: %w", u.UserID, err)
		}
	}

	for _, v := range data.Vehicles {
		vt, _ := domain.ParseVehicleType(v.VehicleType)
		status := string(domain.VehicleActive)
		if v.Status != "" {
			s, _ := domain.ParseVehicleStatus(v.Status)
			status = string(s)
		}
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO vehicles (vehicle_id, plate_number, vehicle_type, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (vehicle_id) DO UPDATE
		SET plate_number = EXCLUDED.plate_number,
			vehicle_type = EXCLUDED.vehicle_type,
			status = EXCLUDED.status;
		`), v.VehicleID, strings.TrimSpace(v.PlateNumber), vt.String(), status)
		if err != nil {
			return fmt.Errorf("seed: insert vehicle_id=%d: %w", v.VehicleID, err)
		}
	}

	for i, e := range data.CollectionEvents {
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO collection_events (container_id, vehicle_id, collection_date, fill_level_before, tonnage_collected)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (container_id, collection_date) DO NOTHING;
		`), e.ContainerID, nullInt(e.VehicleID), e.CollectionDate.UTC(), e.FillLevelBefore, e.TonnageCollected)
		if err != nil {
			return fmt.Errorf("seed: insert collection event #%d: %w", i+1, err)
		}
	}

	for _, m := range data.MonthlyTonnage {
		total := m.Total
		if total == 0 {
			total = m.Surface + m.Underground
		}
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO tonnage_statistics (month, surface_tonnage, underground_tonnage, total_tonnage)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (month) DO UPDATE
		SET surface_tonnage = EXCLUDED.surface_tonnage,
			underground_tonnage = EXCLUDED.underground_tonnage,
			total_tonnage = EXCLUDED.total_tonnage;
		`), m.Month, m.Surface, m.Underground, total)
		if err != nil {
			return fmt.Errorf("seed: insert tonnage month=%s: %w", m.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

func (s Seed) validate() error {
	for i, n := range s.Neighborhoods {
		if n.NeighborhoodID <= 0 {
			return fmt.Errorf("%w: seed: invalid neighborhood_id at index %d: %d", domain.ErrValidation, i+1, n.NeighborhoodID)
		}
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("%w: seed: neighborhood at index %d: name cannot be empty", domain.ErrValidation, i+1)
		}
	}
	for i, c := range s.Containers {
		if c.ContainerID <= 0 {
			return fmt.Errorf("%w: seed: invalid container_id at index %d: %d", domain.ErrValidation, i+1, c.ContainerID)
		}
		if _, err := domain.ParseContainerType(c.ContainerType); err != nil {
			return fmt.Errorf("seed: container at index %d: %w", i+1, err)
		}
		if c.Status != "" {
			if _, err := domain.ParseContainerStatus(c.Status); err != nil {
				return fmt.Errorf("seed: container at index %d: %w", i+1, err)
			}
		}
		if c.CapacityLiters <= 0 {
			return fmt.Errorf("%w: seed: container at index %d: capacity must be positive", domain.ErrValidation, i+1)
		}
		if err := domain.ValidateFillLevel(c.FillLevel); err != nil {
			return fmt.Errorf("seed: container at index %d: %w", i+1, err)
		}
		if (c.Latitude == nil) != (c.Longitude == nil) {
			return fmt.Errorf("%w: seed: container at index %d: latitude and longitude must be set together", domain.ErrValidation, i+1)
		}
	}
	for i, u := range s.Users {
		if u.UserID <= 0 {
			return fmt.Errorf("%w: seed: invalid user_id at index %d: %d", domain.ErrValidation, i+1, u.UserID)
		}
		if u.TrustScore != nil && *u.TrustScore < 0 {
			return fmt.Errorf("%w: seed: user at index %d: trust score cannot be negative", domain.ErrValidation, i+1)
		}
	}
	for i, v := range s.Vehicles {
		if v.VehicleID <= 0 {
			return fmt.Errorf("%w: seed: invalid vehicle_id at index %d: %d", domain.ErrValidation, i+1, v.VehicleID)
		}
		if strings.TrimSpace(v.PlateNumber) == "" {
			return fmt.Errorf("%w: seed: vehicle at index %d: plate cannot be empty", domain.ErrValidation, i+1)
		}
		if _, err := domain.ParseVehicleType(v.VehicleType); err != nil {
			return fmt.Errorf("seed: vehicle at index %d: %w", i+1, err)
		}
		if v.Status != "" {
			if _, err := domain.ParseVehicleStatus(v.Status); err != nil {
				return fmt.Errorf("seed: vehicle at index %d: %w", i+1, err)
			}
		}
	}
	for i, e := range s.CollectionEvents {
		if e.ContainerID <= 0 {
			return fmt.Errorf("%w: seed: collection event at index %d: invalid container_id", domain.ErrValidation, i+1)
		}
		if err := domain.ValidateFillLevel(e.FillLevelBefore); err != nil {
			return fmt.Errorf("seed: collection event at index %d: %w", i+1, err)
		}
	}
	for i, m := range s.MonthlyTonnage {
		if _, err := domain.ParseMonth(m.Month); err != nil {
			return fmt.Errorf("seed: tonnage at index %d: %w", i+1, err)
		}
		if m.Surface < 0 || m.Underground < 0 || m.Total < 0 {
			return fmt.Errorf("%w: seed: tonnage at index %d: tonnage cannot be negative", domain.ErrValidation, i+1)
		}
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}
