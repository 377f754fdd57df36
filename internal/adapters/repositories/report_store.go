package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"
)

// WithReportTx runs fn inside one transaction and commits only if fn succeeds.
func (s *SQLStore) WithReportTx(ctx context.Context, fn func(tx ports.ReportTx) error) error {
	if s.DB == nil {
		return errors.New("sql store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("report tx: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&reportTx{tx: tx, store: s}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("report tx: commit: %w", err)
	}
	return nil
}

// reportTx routes every statement through the open transaction.
type reportTx struct {
	tx    *sql.Tx
	store *SQLStore
}

func (r *reportTx) rebind(q string) string { return r.store.dialect.Rebind(q) }

func (r *reportTx) LockUser(ctx context.Context, id int64) (*domain.User, error) {
	q := r.rebind(r.store.forUpdate(`SELECT ` + userColumns + ` FROM users WHERE user_id = ?`))
	u, err := scanUser(r.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("lock user %d: %w", id, err)
	}
	return u, nil
}

func (r *reportTx) LockContainer(ctx context.Context, id int64) (*domain.Container, error) {
	q := r.rebind(r.store.forUpdate(`SELECT` + containerColumns + `
	FROM containers c
	WHERE c.container_id = ?`))
	c, err := scanContainer(r.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: container %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("lock container %d: %w", id, err)
	}
	return c, nil
}

func (r *reportTx) InsertReport(ctx context.Context, rep *domain.CitizenReport) (int64, error) {
	q := r.rebind(`
	INSERT INTO citizen_reports (
		user_id, container_id, fill_level_estimate, accuracy, prediction_diff,
		outcome, actual_full, has_photo, notes, submitted_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING report_id`)

	var id int64
	err := r.tx.QueryRowContext(ctx, q,
		rep.UserID, rep.ContainerID, rep.EstimatedFill, rep.Accuracy, rep.Diff,
		string(rep.Outcome), rep.ActualFull, rep.HasPhoto, rep.Notes, rep.SubmittedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	rep.ReportID = id
	return id, nil
}

func (r *reportTx) UpdateUserTrust(ctx context.Context, u *domain.User) error {
	if u.TrustScore < 0 {
		return fmt.Errorf("%w: negative trust score for user %d", domain.ErrValidation, u.UserID)
	}
	res, err := r.tx.ExecContext(ctx, r.rebind(`
	UPDATE users
	SET trust_score = ?, total_reports = ?, accurate_reports = ?
	WHERE user_id = ?`), u.TrustScore, u.TotalReports, u.AccurateReports, u.UserID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.UserID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: user %d", domain.ErrNotFound, u.UserID)
	}
	return nil
}

func (r *reportTx) UpdateContainerFill(ctx context.Context, c *domain.Container) error {
	return updateContainerFill(ctx, r.tx, r.rebind, c)
}

func (r *reportTx) IncrementVerified(ctx context.Context) (int, error) {
	var n int
	err := r.tx.QueryRowContext(ctx, `
	UPDATE training_state
	SET verified_count = verified_count + 1
	WHERE id = 1
	RETURNING verified_count`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("increment verified count: %w", err)
	}
	return n, nil
}
