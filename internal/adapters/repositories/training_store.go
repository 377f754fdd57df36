package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"waste-collection-service/internal/domain"
)

func (s *SQLStore) VerifiedCount(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT verified_count FROM training_state WHERE id = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("verified count: %w", err)
	}
	return n, nil
}

// ConsumeVerified subtracts n, so reports verified while a retrain ran still count.
func (s *SQLStore) ConsumeVerified(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	q := s.dialect.Rebind(`
	UPDATE training_state
	SET verified_count = CASE WHEN verified_count > ? THEN verified_count - ? ELSE 0 END
	WHERE id = 1`)
	if _, err := s.DB.ExecContext(ctx, q, n, n); err != nil {
		return fmt.Errorf("consume verified count: %w", err)
	}
	return nil
}

// Return every active container joined with its neighborhood density and
// collection history aggregate.
func (s *SQLStore) ListTrainingRows(ctx context.Context) ([]domain.TrainingRow, error) {
	query := `
	SELECT
		c.container_id,
		c.container_type,
		c.capacity_liters,
		c.current_fill_level,
		n.population_density,
		h.avg_tonnage,
		h.avg_fill_before,
		h.event_count
	FROM containers c
	LEFT JOIN neighborhoods n ON n.neighborhood_id = c.neighborhood_id
	LEFT JOIN (
		SELECT
			container_id,
			AVG(tonnage_collected) AS avg_tonnage,
			AVG(fill_level_before) AS avg_fill_before,
			COUNT(*) AS event_count
		FROM collection_events
		GROUP BY container_id
	) h ON h.container_id = c.container_id
	WHERE c.status = 'active'
	ORDER BY c.container_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list training rows: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TrainingRow, 0, 256)
	for rows.Next() {
		var (
			r             domain.TrainingRow
			typeName      string
			density       sql.NullFloat64
			tonnage, fill sql.NullFloat64
			count         sql.NullInt64
		)
		if err := rows.Scan(&r.ContainerID, &typeName, &r.CapacityLiters, &r.FillLevel,
			&density, &tonnage, &fill, &count); err != nil {
			return nil, fmt.Errorf("list training rows: scan row: %w", err)
		}
		if r.Type, err = domain.ParseContainerType(typeName); err != nil {
			return nil, fmt.Errorf("list training rows: container %d: %w", r.ContainerID, err)
		}
		// Training rows without a neighborhood count as density 0.
		if density.Valid {
			r.PopulationDensity = density.Float64
		}
		if count.Valid && count.Int64 > 0 {
			r.HasHistory = true
			r.Stats = domain.CollectionStats{
				AvgTonnage:    tonnage.Float64,
				AvgFillBefore: fill.Float64,
				EventCount:    int(count.Int64),
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list training rows: row iteration: %w", err)
	}

	return out, nil
}
