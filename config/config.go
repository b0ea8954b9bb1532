package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"listo/db"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	DBDriver        string        `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"listo.db"`
	JWTSecret       string        `env:"JWT_SECRET"`
	TokenTTL        time.Duration `env:"JWT_EXPIRES_IN" envDefault:"720h"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default env")
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET not set")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.TokenTTL)
	}
	switch c.DBDriver {
	case db.DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL not set")
		}
	case db.DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH not set")
		}
	case db.DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) StoreOptions() db.Options {
	return db.Options{
		Driver:      c.DBDriver,
		DatabaseURL: c.DatabaseURL,
		SQLitePath:  c.SQLitePath,
	}
}
