package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"waste-collection-service/internal/platform/db"
)

// Column types that differ between the two dialects. Everything else in the
// schema is portable SQL.
type columnTypes struct {
	serial    string
	real      string
	boolean   string
	timestamp string
}

func typesFor(d db.Dialect) columnTypes {
	if d == db.Postgres {
		return columnTypes{
			serial:    "BIGSERIAL PRIMARY KEY",
			real:      "DOUBLE PRECISION",
			boolean:   "BOOLEAN",
			timestamp: "TIMESTAMPTZ",
		}
	}
	return columnTypes{
		serial:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		real:      "REAL",
		boolean:   "BOOLEAN",
		timestamp: "TIMESTAMP",
	}
}

func schemaStatements(d db.Dialect) []string {
	t := typesFor(d)
	r := strings.NewReplacer(
		"{serial}", t.serial,
		"{real}", t.real,
		"{bool}", t.boolean,
		"{ts}", t.timestamp,
	)

	stmts := []string{
		`
	CREATE TABLE IF NOT EXISTS neighborhoods (
		neighborhood_id BIGINT PRIMARY KEY,
		neighborhood_name TEXT NOT NULL,
		population INTEGER NOT NULL DEFAULT 0,
		population_density {real} NOT NULL DEFAULT 0,
		area_km2 {real} NOT NULL DEFAULT 0
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS containers (
		container_id BIGINT PRIMARY KEY,
		container_type TEXT NOT NULL,
		capacity_liters INTEGER NOT NULL CHECK (capacity_liters > 0),
		current_fill_level {real} NOT NULL DEFAULT 0
			CHECK (current_fill_level >= 0 AND current_fill_level <= 1),
		latitude {real},
		longitude {real},
		neighborhood_id BIGINT NOT NULL REFERENCES neighborhoods (neighborhood_id),
		last_collection_date {ts},
		status TEXT NOT NULL DEFAULT 'active'
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		trust_score {real} NOT NULL DEFAULT 0.5 CHECK (trust_score >= 0),
		total_reports INTEGER NOT NULL DEFAULT 0,
		accurate_reports INTEGER NOT NULL DEFAULT 0
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS vehicles (
		vehicle_id BIGINT PRIMARY KEY,
		plate_number TEXT NOT NULL UNIQUE,
		vehicle_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS citizen_reports (
		report_id {serial},
		user_id BIGINT NOT NULL REFERENCES users (user_id),
		container_id BIGINT NOT NULL REFERENCES containers (container_id),
		fill_level_estimate {real} NOT NULL,
		accuracy {real} NOT NULL,
		prediction_diff {real} NOT NULL,
		outcome TEXT NOT NULL,
		actual_full {bool} NOT NULL,
		has_photo {bool} NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		submitted_at {ts} NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS collection_events (
		event_id {serial},
		container_id BIGINT NOT NULL REFERENCES containers (container_id),
		vehicle_id BIGINT REFERENCES vehicles (vehicle_id),
		collection_date {ts} NOT NULL,
		fill_level_before {real} NOT NULL,
		tonnage_collected {real} NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS tonnage_statistics (
		month TEXT PRIMARY KEY,
		surface_tonnage {real} NOT NULL DEFAULT 0,
		underground_tonnage {real} NOT NULL DEFAULT 0,
		total_tonnage {real} NOT NULL DEFAULT 0
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS training_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		verified_count INTEGER NOT NULL DEFAULT 0 CHECK (verified_count >= 0)
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		distance_meters {real} NOT NULL,
		duration_seconds {real} NOT NULL,
		geometry TEXT NOT NULL,
		cached_at {ts} NOT NULL
	);
	`,
		`
	INSERT INTO training_state (id, verified_count) VALUES (1, 0)
	ON CONFLICT (id) DO NOTHING;
	`,
		`CREATE INDEX IF NOT EXISTS idx_containers_fill ON containers (current_fill_level);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_user ON citizen_reports (user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_submitted ON citizen_reports (submitted_at);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_container_date ON collection_events (container_id, collection_date);`,
	}

	for i, s := range stmts {
		stmts[i] = r.Replace(s)
	}
	return stmts
}

// Initialize the database schema. Safe to run on every start.
func InitSchema(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements(dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
