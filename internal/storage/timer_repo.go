package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type TimerRepo struct {
	db DBTX
}

func NewTimerRepo(db DBTX) *TimerRepo {
	return &TimerRepo{db: db}
}

func (r *TimerRepo) Get(ctx context.Context, userKey string) (*ActiveTimer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_key, habit_id, started_at FROM active_timers WHERE user_key = ?
	`, userKey)

	var t ActiveTimer
	if err := row.Scan(&t.UserKey, &t.HabitID, &t.StartedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("timer get: %w", err)
	}
	return &t, nil
}

// Insert is the check-and-set for the one-timer-per-user invariant:
// the primary key on user_key makes a concurrent second start lose,
// reported here as inserted == false.
func (r *TimerRepo) Insert(ctx context.Context, userKey string, habitID int64, startedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO active_timers (user_key, habit_id, started_at)
		VALUES (?, ?, ?)
	`, userKey, habitID, startedAt)
	if err != nil {
		return false, fmt.Errorf("timer insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("timer rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *TimerRepo) Delete(ctx context.Context, userKey string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM active_timers WHERE user_key = ?`, userKey)
	if err != nil {
		return fmt.Errorf("timer delete: %w", err)
	}
	return nil
}
