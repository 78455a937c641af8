package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type HabitRepo struct {
	db DBTX
}

func NewHabitRepo(db DBTX) *HabitRepo {
	return &HabitRepo{db: db}
}

type HabitInsert struct {
	UserKey    string
	Name       string
	Kind       string
	Frequency  string
	Target     int
	Unit       *string
	CustomDays []int
	XPValue    int
}

func (r *HabitRepo) Insert(ctx context.Context, in HabitInsert) (int64, error) {
	var daysJSON *string
	if len(in.CustomDays) > 0 {
		data, err := json.Marshal(in.CustomDays)
		if err != nil {
			return 0, fmt.Errorf("marshal custom days: %w", err)
		}
		s := string(data)
		daysJSON = &s
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO habits (user_key, name, kind, frequency, target, unit, custom_days, xp_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, in.UserKey, in.Name, in.Kind, in.Frequency, in.Target, in.Unit, daysJSON, in.XPValue)
	if err != nil {
		return 0, fmt.Errorf("habit insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("habit last insert id: %w", err)
	}
	return id, nil
}

const habitColumns = `id, user_key, name, kind, frequency, target, unit, custom_days, xp_value, archived,
	created_at, current_streak, longest_streak, total_completions`

func (r *HabitRepo) Get(ctx context.Context, id int64) (*Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("habit get: %w", err)
	}
	return h, nil
}

func (r *HabitRepo) ListByUser(ctx context.Context, userKey string, includeArchived bool) ([]Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_key = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, userKey)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []Habit
	for rows.Next() {
		h, err := scanHabit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("habit scan: %w", err)
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit list rows: %w", err)
	}
	return out, nil
}

// UpdateDerived writes the recomputed streak cache. Nothing else may
// touch these columns.
func (r *HabitRepo) UpdateDerived(ctx context.Context, id int64, currentStreak, longestStreak, totalCompletions int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE habits
		SET current_streak = ?, longest_streak = ?, total_completions = ?
		WHERE id = ?
	`, currentStreak, longestStreak, totalCompletions, id)
	if err != nil {
		return fmt.Errorf("habit update derived: %w", err)
	}
	return nil
}

func (r *HabitRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE habits SET archived = ? WHERE id = ?`, boolToInt(archived), id)
	if err != nil {
		return fmt.Errorf("habit set archived: %w", err)
	}
	return nil
}

func scanHabit(scan func(dest ...any) error) (*Habit, error) {
	var h Habit
	var archived int
	var daysJSON *string
	if err := scan(&h.ID, &h.UserKey, &h.Name, &h.Kind, &h.Frequency, &h.Target, &h.Unit, &daysJSON,
		&h.XPValue, &archived, &h.CreatedAt, &h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions); err != nil {
		return nil, err
	}
	h.Archived = archived != 0
	if daysJSON != nil && *daysJSON != "" {
		if err := json.Unmarshal([]byte(*daysJSON), &h.CustomDays); err != nil {
			return nil, fmt.Errorf("unmarshal custom days: %w", err)
		}
	}
	return &h, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
