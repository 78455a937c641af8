package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// MainUserKey identifies the single local user the CLI operates on.
const MainUserKey = "main"

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Get(ctx context.Context, key string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, xp, level, created_at FROM users WHERE key = ?`, key)

	var u User
	if err := row.Scan(&u.Key, &u.XP, &u.Level, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetOrCreate(ctx context.Context, key string) (*User, error) {
	u, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO users (key) VALUES (?)`, key); err != nil {
		return nil, fmt.Errorf("user insert: %w", err)
	}
	return r.Get(ctx, key)
}

func (r *UserRepo) UpdateXP(ctx context.Context, key string, xp, level int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET xp = ?, level = ? WHERE key = ?`, xp, level, key)
	if err != nil {
		return fmt.Errorf("user update xp: %w", err)
	}
	return nil
}
