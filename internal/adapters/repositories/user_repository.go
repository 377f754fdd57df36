package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"waste-collection-service/internal/domain"
)

func (s *SQLStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if s.DB == nil {
		return nil, errors.New("sql store: DB is nil")
	}

	q := s.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE user_id = ?`)
	u, err := scanUser(s.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// Return reporters ranked by trust score, ties broken by report count.
func (s *SQLStore) Leaderboard(ctx context.Context, limit int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = 10
	}

	q := s.dialect.Rebind(`SELECT ` + userColumns + `
	FROM users
	WHERE total_reports > 0
	ORDER BY trust_score DESC, total_reports DESC, user_id
	LIMIT ?`)

	rows, err := s.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query users table: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("leaderboard: scan row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: row iteration: %w", err)
	}

	return users, nil
}
