package repositories

import (
	"database/sql"
	"fmt"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/platform/db"
)

// SQLStore implements the repository ports on database/sql for both dialects.
// Queries are written with '?' placeholders and rebound per dialect.
type SQLStore struct {
	DB      *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

func NewSQLStore(conn *sql.DB, dialect db.Dialect) *SQLStore {
	return &SQLStore{DB: conn, dialect: dialect, now: time.Now}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const containerColumns = `
	c.container_id,
	c.container_type,
	c.capacity_liters,
	c.current_fill_level,
	c.latitude,
	c.longitude,
	c.neighborhood_id,
	c.last_collection_date,
	c.status`

func scanContainer(row rowScanner) (*domain.Container, error) {
	var (
		c             domain.Container
		typeName      string
		status        string
		lat, lon      sql.NullFloat64
		lastCollected sql.NullTime
	)
	err := row.Scan(
		&c.ContainerID,
		&typeName,
		&c.CapacityLiters,
		&c.FillLevel,
		&lat,
		&lon,
		&c.NeighborhoodID,
		&lastCollected,
		&status,
	)
	if err != nil {
		return nil, err
	}

	if c.Type, err = domain.ParseContainerType(typeName); err != nil {
		return nil, fmt.Errorf("container %d: %w", c.ContainerID, err)
	}
	if c.Status, err = domain.ParseContainerStatus(status); err != nil {
		return nil, fmt.Errorf("container %d: %w", c.ContainerID, err)
	}
	if lat.Valid && lon.Valid {
		c.Location = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
	}
	if lastCollected.Valid {
		t := lastCollected.Time
		c.LastCollectionAt = &t
	}

	return &c, nil
}

const userColumns = `user_id, name, trust_score, total_reports, accurate_reports`

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.UserID, &u.Name, &u.TrustScore, &u.TotalReports, &u.AccurateReports); err != nil {
		return nil, err
	}
	return &u, nil
}

// forUpdate appends a row lock for dialects that support it. SQLite
// serializes writers at the connection level instead.
func (s *SQLStore) forUpdate(query string) string {
	if s.dialect == db.Postgres {
		return query + " FOR UPDATE"
	}
	return query
}
