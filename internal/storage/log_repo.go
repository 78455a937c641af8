package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type LogRepo struct {
	db DBTX
}

func NewLogRepo(db DBTX) *LogRepo {
	return &LogRepo{db: db}
}

func (r *LogRepo) GetByDate(ctx context.Context, habitID int64, logDate string) (*HabitLog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, habit_id, log_date, value, timer_started_at, timer_stopped_at, created_at
		FROM habit_logs
		WHERE habit_id = ? AND log_date = ?
	`, habitID, logDate)

	var l HabitLog
	if err := row.Scan(&l.ID, &l.HabitID, &l.LogDate, &l.Value, &l.TimerStartedAt, &l.TimerStoppedAt, &l.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("log get by date: %w", err)
	}
	return &l, nil
}

func (r *LogRepo) Insert(ctx context.Context, habitID int64, logDate string, value int, timerStart, timerStop *time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO habit_logs (habit_id, log_date, value, timer_started_at, timer_stopped_at)
		VALUES (?, ?, ?, ?, ?)
	`, habitID, logDate, value, timerStart, timerStop)
	if err != nil {
		return 0, fmt.Errorf("log insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("log last insert id: %w", err)
	}
	return id, nil
}

func (r *LogRepo) UpdateValue(ctx context.Context, id int64, value int, timerStart, timerStop *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE habit_logs
		SET value = ?,
			timer_started_at = COALESCE(?, timer_started_at),
			timer_stopped_at = COALESCE(?, timer_stopped_at)
		WHERE id = ?
	`, value, timerStart, timerStop, id)
	if err != nil {
		return fmt.Errorf("log update value: %w", err)
	}
	return nil
}

func (r *LogRepo) ListByHabit(ctx context.Context, habitID int64) ([]HabitLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, habit_id, log_date, value, timer_started_at, timer_stopped_at, created_at
		FROM habit_logs
		WHERE habit_id = ?
		ORDER BY log_date ASC
	`, habitID)
	if err != nil {
		return nil, fmt.Errorf("log list: %w", err)
	}
	defer rows.Close()

	var out []HabitLog
	for rows.Next() {
		var l HabitLog
		if err := rows.Scan(&l.ID, &l.HabitID, &l.LogDate, &l.Value, &l.TimerStartedAt, &l.TimerStoppedAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("log scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("log list rows: %w", err)
	}
	return out, nil
}
