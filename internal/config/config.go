package config

import (
	"os"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	// AllowSeed enables the dev-only catalog seeding endpoint.
	AllowSeed bool
	// StaleOrderMaxAge is how long an unpaid pending order may sit before
	// the cleanup job cancels it and restocks its lines.
	StaleOrderMaxAge time.Duration
}

// Load reads configuration from environment variables.
func Load() Config {
	cfg := Config{
		Addr:             os.Getenv("SHOP_ADDR"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AllowSeed:        os.Getenv("ALLOW_SEED") == "1",
		StaleOrderMaxAge: 72 * time.Hour,
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if v := os.Getenv("STALE_ORDER_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StaleOrderMaxAge = d
		}
	}
	return cfg
}
