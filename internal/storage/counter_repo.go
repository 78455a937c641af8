package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// LifetimeBucket is the bucket id of the all-time counter row.
const LifetimeBucket = ""

type CounterRepo struct {
	db DBTX
}

func NewCounterRepo(db DBTX) *CounterRepo {
	return &CounterRepo{db: db}
}

func (r *CounterRepo) Bump(ctx context.Context, userKey, category, bucket string, delta int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_counters (user_key, category, bucket, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_key, category, bucket) DO UPDATE SET value = value + excluded.value
	`, userKey, category, bucket, delta)
	if err != nil {
		return fmt.Errorf("counter bump: %w", err)
	}
	return nil
}

func (r *CounterRepo) Get(ctx context.Context, userKey, category, bucket string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT value FROM activity_counters
		WHERE user_key = ? AND category = ? AND bucket = ?
	`, userKey, category, bucket)

	var v int
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("counter get: %w", err)
	}
	return v, nil
}
