package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"waste-collection-service/internal/domain"
)

// Return one container by id.
func (s *SQLStore) GetContainer(ctx context.Context, id int64) (*domain.Container, error) {
	if s.DB == nil {
		return nil, errors.New("sql store: DB is nil")
	}

	q := s.dialect.Rebind(`SELECT` + containerColumns + `
	FROM containers c
	WHERE c.container_id = ?`)

	c, err := scanContainer(s.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: container %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get container %d: %w", id, err)
	}
	return c, nil
}

func (s *SQLStore) GetNeighborhood(ctx context.Context, id int64) (*domain.Neighborhood, error) {
	q := s.dialect.Rebind(`
	SELECT neighborhood_id, neighborhood_name, population, population_density, area_km2
	FROM neighborhoods
	WHERE neighborhood_id = ?`)

	var n domain.Neighborhood
	err := s.DB.QueryRowContext(ctx, q, id).Scan(
		&n.NeighborhoodID, &n.Name, &n.Population, &n.PopulationDensity, &n.AreaKm2)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: neighborhood %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get neighborhood %d: %w", id, err)
	}
	return &n, nil
}

// Return active, located containers at or above minFill, fullest first.
func (s *SQLStore) ListEligibleContainers(ctx context.Context, minFill float64) ([]*domain.Container, error) {
	q := s.dialect.Rebind(`SELECT` + containerColumns + `
	FROM containers c
	WHERE c.status = 'active'
		AND c.current_fill_level >= ?
		AND c.latitude IS NOT NULL
		AND c.longitude IS NOT NULL
	ORDER BY c.current_fill_level DESC, c.neighborhood_id, c.container_id`)

	return s.queryContainers(ctx, "list eligible containers", q, minFill)
}

func (s *SQLStore) ListFullContainers(ctx context.Context, minFill float64, limit int) ([]*domain.Container, error) {
	if limit <= 0 {
		limit = 100
	}
	q := s.dialect.Rebind(`SELECT` + containerColumns + `
	FROM containers c
	WHERE c.status = 'active' AND c.current_fill_level >= ?
	ORDER BY c.current_fill_level DESC, c.container_id
	LIMIT ?`)

	return s.queryContainers(ctx, "list full containers", q, minFill, limit)
}

// Return every active container ordered by id, located or not.
func (s *SQLStore) ListActiveContainers(ctx context.Context) ([]*domain.Container, error) {
	q := `SELECT` + containerColumns + `
	FROM containers c
	WHERE c.status = 'active'
	ORDER BY c.container_id`

	return s.queryContainers(ctx, "list active containers", q)
}

func (s *SQLStore) queryContainers(ctx context.Context, op, query string, args ...any) ([]*domain.Container, error) {
	if s.DB == nil {
		return nil, errors.New("sql store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query containers table: %w", op, err)
	}
	defer rows.Close()

	containers := make([]*domain.Container, 0, 64)
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		containers = append(containers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return containers, nil
}

// Aggregate the collection history of one container. ok is false when it
// has never been collected.
func (s *SQLStore) GetCollectionStats(ctx context.Context, containerID int64) (domain.CollectionStats, bool, error) {
	q := s.dialect.Rebind(`
	SELECT AVG(tonnage_collected), AVG(fill_level_before), COUNT(*)
	FROM collection_events
	WHERE container_id = ?`)

	var (
		tonnage, fill sql.NullFloat64
		count         int
	)
	if err := s.DB.QueryRowContext(ctx, q, containerID).Scan(&tonnage, &fill, &count); err != nil {
		return domain.CollectionStats{}, false, fmt.Errorf("collection stats %d: %w", containerID, err)
	}
	if count == 0 {
		return domain.CollectionStats{}, false, nil
	}

	return domain.CollectionStats{
		AvgTonnage:    tonnage.Float64,
		AvgFillBefore: fill.Float64,
		EventCount:    count,
	}, true, nil
}

// Record a collection and reset the container to empty in one transaction.
func (s *SQLStore) RecordCollection(ctx context.Context, ev *domain.CollectionEvent) (*domain.Container, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("record collection: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.dialect.Rebind(s.forUpdate(`SELECT` + containerColumns + `
	FROM containers c
	WHERE c.container_id = ?`))
	c, err := scanContainer(tx.QueryRowContext(ctx, q, ev.ContainerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: container %d", domain.ErrNotFound, ev.ContainerID)
	}
	if err != nil {
		return nil, fmt.Errorf("record collection: load container %d: %w", ev.ContainerID, err)
	}

	if ev.VehicleID != nil {
		var one int
		err := tx.QueryRowContext(ctx, s.dialect.Rebind(`SELECT 1 FROM vehicles WHERE vehicle_id = ?`), *ev.VehicleID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle %d", domain.ErrNotFound, *ev.VehicleID)
		}
		if err != nil {
			return nil, fmt.Errorf("record collection: load vehicle %d: %w", *ev.VehicleID, err)
		}
	}

	at := ev.CollectedAt
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()
	ev.FillLevelBefore = c.FillLevel
	ev.CollectedAt = at

	err = tx.QueryRowContext(ctx, s.dialect.Rebind(`
	INSERT INTO collection_events (container_id, vehicle_id, collection_date, fill_level_before, tonnage_collected)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (container_id, collection_date) DO NOTHING
	RETURNING event_id`),
		ev.ContainerID, nullInt(ev.VehicleID), at, ev.FillLevelBefore, ev.TonnageCollected,
	).Scan(&ev.EventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: container %d already has a collection at %s",
			domain.ErrValidation, ev.ContainerID, at.Format(time.RFC3339Nano))
	}
	if err != nil {
		return nil, fmt.Errorf("record collection: insert event: %w", err)
	}

	if err := c.SetFillLevel(0, at); err != nil {
		return nil, err
	}
	if err := updateContainerFill(ctx, tx, s.dialect.Rebind, c); err != nil {
		return nil, fmt.Errorf("record collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("record collection: commit tx: %w", err)
	}
	return c, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateContainerFill(ctx context.Context, ex execer, rebind func(string) string, c *domain.Container) error {
	var last any
	if c.LastCollectionAt != nil {
		last = c.LastCollectionAt.UTC()
	}
	res, err := ex.ExecContext(ctx, rebind(`
	UPDATE containers
	SET current_fill_level = ?, last_collection_date = ?
	WHERE container_id = ?`), c.FillLevel, last, c.ContainerID)
	if err != nil {
		return fmt.Errorf("update container %d: %w", c.ContainerID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: container %d", domain.ErrNotFound, c.ContainerID)
	}
	return nil
}
