package storage

import (
	"context"
	"fmt"
	"time"
)

type UnlockRepo struct {
	db DBTX
}

func NewUnlockRepo(db DBTX) *UnlockRepo {
	return &UnlockRepo{db: db}
}

// Insert creates an unlock record. It returns false when the
// (user, achievement, bucket) row already exists; the caller must not
// award the reward XP again in that case.
func (r *UnlockRepo) Insert(ctx context.Context, userKey, achievementKey, periodBucket string, xpAwarded int, unlockedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_achievements (user_key, achievement_key, period_bucket, xp_awarded, unlocked_at)
		VALUES (?, ?, ?, ?, ?)
	`, userKey, achievementKey, periodBucket, xpAwarded, unlockedAt)
	if err != nil {
		return false, fmt.Errorf("unlock insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlock rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *UnlockRepo) ListByUser(ctx context.Context, userKey string) ([]UserAchievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_key, achievement_key, period_bucket, xp_awarded, unlocked_at
		FROM user_achievements
		WHERE user_key = ?
		ORDER BY unlocked_at ASC, id ASC
	`, userKey)
	if err != nil {
		return nil, fmt.Errorf("unlock list: %w", err)
	}
	defer rows.Close()

	var out []UserAchievement
	for rows.Next() {
		var ua UserAchievement
		if err := rows.Scan(&ua.ID, &ua.UserKey, &ua.AchievementKey, &ua.PeriodBucket, &ua.XPAwarded, &ua.UnlockedAt); err != nil {
			return nil, fmt.Errorf("unlock scan: %w", err)
		}
		out = append(out, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unlock list rows: %w", err)
	}
	return out, nil
}

func (r *UnlockRepo) CountByUser(ctx context.Context, userKey string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_achievements WHERE user_key = ?
	`, userKey)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("unlock count: %w", err)
	}
	return n, nil
}
