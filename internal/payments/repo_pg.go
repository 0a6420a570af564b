package payments

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const paymentColumns = `id, user_id, status, screenshot_key, content_type, reviewed_by, reviewed_at, created_at`

func (r *PGRepo) Create(ctx context.Context, p Payment) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO payments (id, user_id, status, screenshot_key, content_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, string(p.Status), p.ScreenshotKey, p.ContentType, p.CreatedAt)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Payment, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+paymentColumns+`
FROM payments
WHERE id = $1`, id)
	return scanPayment(row)
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Payment, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+paymentColumns+`
FROM payments
WHERE user_id = $1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PGRepo) List(ctx context.Context, status Status, limit, offset int) ([]Payment, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+paymentColumns+`
FROM payments
WHERE ($1::text = '' OR status = $1)
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3`, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PGRepo) Review(ctx context.Context, id string, status Status, reviewer string) (Payment, error) {
	row := r.DB.QueryRowContext(ctx, `
UPDATE payments
SET status = $2, reviewed_by = $3, reviewed_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING `+paymentColumns, id, string(status), reviewer)
	p, err := scanPayment(row)
	if !errors.Is(err, ErrNotFound) {
		return p, err
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return Payment{}, err
	}
	return Payment{}, ErrNotPending
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(s scanner) (Payment, error) {
	var p Payment
	var status string
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	err := s.Scan(&p.ID, &p.UserID, &status, &p.ScreenshotKey, &p.ContentType, &reviewedBy, &reviewedAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	p.Status = Status(status)
	p.ReviewedBy = reviewedBy.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		p.ReviewedAt = &t
	}
	return p, nil
}

func collect(rows *sql.Rows) ([]Payment, error) {
	defer rows.Close()
	out := []Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
