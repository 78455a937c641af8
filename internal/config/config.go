package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"lifequest/internal/storage"
)

// Config is loaded from the environment. All values have usable
// defaults so a fresh install needs no setup.
type Config struct {
	DBPath    string `env:"LIFEQUEST_DB"`
	Timezone  string `env:"LIFEQUEST_TZ" envDefault:"Local"`
	WeekStart string `env:"LIFEQUEST_WEEK_START" envDefault:"monday"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		path, err := storage.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = path
	}
	return cfg, nil
}

// Location resolves the configured timezone; day boundaries and period
// buckets are computed in it.
func (c Config) Location() (*time.Location, error) {
	if strings.EqualFold(c.Timezone, "Local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) WeekStartDay() (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon", "":
		return time.Monday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("invalid week start %q (want monday, sunday or saturday)", c.WeekStart)
	}
}
