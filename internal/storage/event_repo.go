package storage

import (
	"context"
	"fmt"
	"time"
)

type EventRepo struct {
	db DBTX
}

func NewEventRepo(db DBTX) *EventRepo {
	return &EventRepo{db: db}
}

// Insert records a processed activity event. It returns false when the
// event ID was already recorded, which the pipeline treats as a
// duplicate delivery and skips.
func (r *EventRepo) Insert(ctx context.Context, id, userKey, category string, count int, occurredAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO activity_events (id, user_key, category, count, occurred_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, userKey, category, count, occurredAt)
	if err != nil {
		return false, fmt.Errorf("event insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("event rows affected: %w", err)
	}
	return n > 0, nil
}
