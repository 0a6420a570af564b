package generations

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO generations (
    id, user_id, company_name, job_description, resume_text, tone, email_length, generated_result, fallback, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.CompanyName,
		rec.JobDescription,
		rec.ResumeText,
		rec.Tone,
		rec.EmailLength,
		[]byte(rec.Result),
		rec.Fallback,
		rec.CreatedAt,
	)
	return err
}

// GetByID returns a record owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Record, error) {
	const query = `
SELECT id, user_id, company_name, job_description, resume_text, tone, email_length, generated_result, fallback, created_at
FROM generations
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var rec Record
	var result []byte
	err := r.DB.QueryRowContext(ctx, query, id, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.CompanyName,
		&rec.JobDescription,
		&rec.ResumeText,
		&rec.Tone,
		&rec.EmailLength,
		&result,
		&rec.Fallback,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.Result = result
	return rec, nil
}

// ListByUser lists a user's records ordered newest-first. The result column is not loaded.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	const query = `
SELECT id, user_id, company_name, tone, email_length, fallback, created_at
FROM generations
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.CompanyName,
			&rec.Tone,
			&rec.EmailLength,
			&rec.Fallback,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
