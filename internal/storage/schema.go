package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			key TEXT PRIMARY KEY,
			xp INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS habits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_key TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			frequency TEXT NOT NULL,
			target INTEGER NOT NULL DEFAULT 1,
			unit TEXT,
			custom_days TEXT,
			xp_value INTEGER NOT NULL DEFAULT 10,
			archived INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,

			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			total_completions INTEGER NOT NULL DEFAULT 0,

			FOREIGN KEY(user_key) REFERENCES users(key)
		);`,
		// One primary log row per habit and local calendar day; repeated
		// logs fold into that row's value.
		`CREATE TABLE IF NOT EXISTS habit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			habit_id INTEGER NOT NULL,
			log_date TEXT NOT NULL,
			value INTEGER NOT NULL DEFAULT 0,
			timer_started_at DATETIME,
			timer_stopped_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(habit_id, log_date),
			FOREIGN KEY(habit_id) REFERENCES habits(id)
		);`,
		// Processed activity events; the primary key is the at-least-once
		// delivery guard.
		`CREATE TABLE IF NOT EXISTS activity_events (
			id TEXT PRIMARY KEY,
			user_key TEXT NOT NULL,
			category TEXT NOT NULL,
			count INTEGER NOT NULL,
			occurred_at DATETIME NOT NULL
		);`,
		// bucket '' holds the lifetime counter; other buckets hold
		// per-reset-period counters.
		`CREATE TABLE IF NOT EXISTS activity_counters (
			user_key TEXT NOT NULL,
			category TEXT NOT NULL,
			bucket TEXT NOT NULL DEFAULT '',
			value INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(user_key, category, bucket)
		);`,
		// The unique index is what makes unlock inserts idempotent under
		// duplicate event delivery.
		`CREATE TABLE IF NOT EXISTS user_achievements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_key TEXT NOT NULL,
			achievement_key TEXT NOT NULL,
			period_bucket TEXT NOT NULL DEFAULT '',
			xp_awarded INTEGER NOT NULL DEFAULT 0,
			unlocked_at DATETIME NOT NULL,
			UNIQUE(user_key, achievement_key, period_bucket)
		);`,
		// user_key as primary key is the check-and-set enforcing one
		// running timer per user.
		`CREATE TABLE IF NOT EXISTS active_timers (
			user_key TEXT PRIMARY KEY,
			habit_id INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			FOREIGN KEY(habit_id) REFERENCES habits(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_habits_user_key ON habits(user_key);`,
		`CREATE INDEX IF NOT EXISTS idx_habit_logs_habit_id_log_date ON habit_logs(habit_id, log_date);`,
		`CREATE INDEX IF NOT EXISTS idx_user_achievements_user_key ON user_achievements(user_key);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
