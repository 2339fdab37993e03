package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	// Environment
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/mortargolf?sslmode=disable"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Redis
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Server
	Port        string `env:"APP_PORT" envDefault:"8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// Game Settings
	CourseFile         string        `env:"COURSE_FILE"`
	MaxPlayersPerMatch int           `env:"MAX_PLAYERS_PER_MATCH" envDefault:"32"`
	MinPlayers         int           `env:"MIN_PLAYERS" envDefault:"1"`
	ShopBetweenHoles   bool          `env:"SHOP_BETWEEN_HOLES" envDefault:"false"`
	SnapshotTTL        time.Duration `env:"SNAPSHOT_TTL" envDefault:"1h"`
	SnapshotInterval   time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"5s"`
	MatchIdleTimeout   time.Duration `env:"MATCH_IDLE_TIMEOUT" envDefault:"10m"`

	// Security
	JWTSecret    string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JoinTokenTTL time.Duration `env:"JOIN_TOKEN_TTL" envDefault:"6h"`
}

// Load reads a .env file if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is empty"))
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite", "":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if c.MaxPlayersPerMatch < 1 {
		errs = append(errs, errors.New("MAX_PLAYERS_PER_MATCH must be positive"))
	}
	if c.MinPlayers < 1 || c.MinPlayers > c.MaxPlayersPerMatch {
		errs = append(errs, errors.New("MIN_PLAYERS must be between 1 and MAX_PLAYERS_PER_MATCH"))
	}
	if c.SnapshotInterval < time.Second {
		errs = append(errs, errors.New("SNAPSHOT_INTERVAL must be at least 1s"))
	}
	return errors.Join(errs...)
}
