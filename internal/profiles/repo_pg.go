package profiles

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo stores profiles in Postgres.
type PGRepo struct {
	DB *sql.DB
}

const profileColumns = `user_id, credits_remaining, plan_type, created_at, updated_at`

func (r *PGRepo) Get(ctx context.Context, userID string) (Profile, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE user_id = $1`, userID)
	return scanProfile(row)
}

func (r *PGRepo) Create(ctx context.Context, p Profile) (Profile, error) {
	row := r.DB.QueryRowContext(ctx, `
INSERT INTO profiles (user_id, credits_remaining, plan_type, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (user_id) DO NOTHING
RETURNING `+profileColumns, p.UserID, p.CreditsRemaining, string(p.PlanType))
	created, err := scanProfile(row)
	if errors.Is(err, ErrNotFound) {
		return r.Get(ctx, p.UserID)
	}
	return created, err
}

func (r *PGRepo) ConsumeCredit(ctx context.Context, userID string) (Profile, error) {
	row := r.DB.QueryRowContext(ctx, `
UPDATE profiles
SET credits_remaining = credits_remaining - 1, updated_at = now()
WHERE user_id = $1 AND plan_type = 'free' AND credits_remaining > 0
RETURNING `+profileColumns, userID)
	p, err := scanProfile(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}

	// Nothing was decremented: the row is missing, pro, or out of credits.
	current, err := r.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if current.PlanType == PlanPro {
		return current, nil
	}
	return Profile{}, ErrPaymentRequired
}

func (r *PGRepo) RefundCredit(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
UPDATE profiles
SET credits_remaining = credits_remaining + 1, updated_at = now()
WHERE user_id = $1 AND plan_type = 'free'`, userID)
	return err
}

func (r *PGRepo) Update(ctx context.Context, userID string, plan Plan, credits int) (Profile, error) {
	row := r.DB.QueryRowContext(ctx, `
UPDATE profiles
SET plan_type = $2, credits_remaining = $3, updated_at = now()
WHERE user_id = $1
RETURNING `+profileColumns, userID, string(plan), credits)
	return scanProfile(row)
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Profile, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+profileColumns+`
FROM profiles
ORDER BY created_at DESC, user_id
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (Profile, error) {
	var p Profile
	var plan string
	err := s.Scan(&p.UserID, &p.CreditsRemaining, &plan, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.PlanType = Plan(plan)
	return p, nil
}
