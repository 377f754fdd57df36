package repositories

import (
	"context"
	"errors"
	"fmt"
	"waste-collection-service/internal/domain"
)

// Return every active vehicle ordered by id.
func (s *SQLStore) ListActiveVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("sql store: DB is nil")
	}

	query := `
	SELECT
		vehicle_id,
		plate_number,
		vehicle_type,
		status
	FROM vehicles
	WHERE status = 'active'
	ORDER BY vehicle_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query vehicles table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*domain.Vehicle, 0, 16)
	for rows.Next() {
		var (
			v                domain.Vehicle
			typeName, status string
		)
		if err := rows.Scan(&v.VehicleID, &v.Plate, &typeName, &status); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		if v.Type, err = domain.ParseVehicleType(typeName); err != nil {
			return nil, fmt.Errorf("list vehicles: vehicle %d: %w", v.VehicleID, err)
		}
		if v.Status, err = domain.ParseVehicleStatus(status); err != nil {
			return nil, fmt.Errorf("list vehicles: vehicle %d: %w", v.VehicleID, err)
		}
		vehicles = append(vehicles, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}
