// Package config loads process configuration from the environment, with a
// best-effort .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	PresenceSweepInterval time.Duration
	PresenceMaxAge        time.Duration

	RoomSweepInterval time.Duration
	RoomInactiveDays  int
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:              getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		PresenceSweepInterval: 2 * time.Minute,
		PresenceMaxAge:        10 * time.Minute,
		RoomSweepInterval:     24 * time.Hour,
		RoomInactiveDays:      8,
	}

	var err error
	if cfg.PresenceSweepInterval, err = getduration("PRESENCE_SWEEP_INTERVAL", cfg.PresenceSweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.PresenceMaxAge, err = getduration("PRESENCE_MAX_AGE", cfg.PresenceMaxAge); err != nil {
		return Config{}, err
	}
	if cfg.RoomSweepInterval, err = getduration("ROOM_SWEEP_INTERVAL", cfg.RoomSweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.RoomInactiveDays, err = getint("ROOM_INACTIVE_DAYS", cfg.RoomInactiveDays); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getint(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
