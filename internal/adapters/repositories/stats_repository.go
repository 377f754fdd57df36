package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"
	"waste-collection-service/internal/domain"
)

// Aggregate the dashboard counters. Daily counters cover [from, to).
func (s *SQLStore) DashboardStats(ctx context.Context, from, to time.Time, fullThreshold float64) (domain.DashboardStats, error) {
	if s.DB == nil {
		return domain.DashboardStats{}, errors.New("sql store: DB is nil")
	}

	q := s.dialect.Rebind(`
	SELECT
		(SELECT COUNT(*) FROM containers WHERE status = 'active'),
		(SELECT COUNT(*) FROM containers WHERE status = 'active' AND current_fill_level >= ?),
		(SELECT COUNT(*) FROM vehicles),
		(SELECT COUNT(*) FROM neighborhoods),
		(SELECT COUNT(*) FROM citizen_reports WHERE submitted_at >= ? AND submitted_at < ?),
		(SELECT COUNT(*) FROM collection_events WHERE collection_date >= ? AND collection_date < ?),
		(SELECT COUNT(*) FROM citizen_reports),
		(SELECT COUNT(*) FROM citizen_reports WHERE outcome = 'verified'),
		COALESCE((SELECT total_tonnage FROM tonnage_statistics ORDER BY month DESC LIMIT 1), 0)`)

	from, to = from.UTC(), to.UTC()
	var st domain.DashboardStats
	err := s.DB.QueryRowContext(ctx, q, fullThreshold, from, to, from, to).Scan(
		&st.TotalContainers,
		&st.FullContainers,
		&st.TotalVehicles,
		&st.Neighborhoods,
		&st.TodayReports,
		&st.TodayCollections,
		&st.TotalReports,
		&st.VerifiedReports,
		&st.MonthTonnage,
	)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return st, nil
}

// Return up to limit months of tonnage, most recent first.
func (s *SQLStore) ListMonthlyTonnage(ctx context.Context, limit int) ([]domain.MonthlyTonnage, error) {
	if s.DB == nil {
		return nil, errors.New("sql store: DB is nil")
	}
	if limit <= 0 {
		limit = 12
	}

	rows, err := s.DB.QueryContext(ctx, s.dialect.Rebind(`
	SELECT month, surface_tonnage, underground_tonnage, total_tonnage
	FROM tonnage_statistics
	ORDER BY month DESC
	LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list monthly tonnage: query tonnage_statistics table: %w", err)
	}
	defer rows.Close()

	months := make([]domain.MonthlyTonnage, 0, limit)
	for rows.Next() {
		var m domain.MonthlyTonnage
		if err := rows.Scan(&m.Month, &m.Surface, &m.Underground, &m.Total); err != nil {
			return nil, fmt.Errorf("list monthly tonnage: scan row: %w", err)
		}
		months = append(months, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list monthly tonnage: row iteration: %w", err)
	}

	return months, nil
}
