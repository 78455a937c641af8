package root

import (
	"context"
	"database/sql"

	"lifequest/internal/config"
	"lifequest/internal/engine"
	"lifequest/internal/storage"
)

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, func(), error) {
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	weekStart, err := cfg.WeekStartDay()
	if err != nil {
		return nil, nil, err
	}

	db, cleanup, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	calendar := engine.CalendarPolicy{Location: loc, WeekStart: weekStart}
	svc := engine.NewService(db, engine.DefaultLevelCurve(), engine.BuiltinCatalog(), calendar)
	return svc, cleanup, nil
}
