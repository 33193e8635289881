// Package config loads service settings from the environment and the event
// content from a YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/database"
	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
)

// Config is the process configuration.
type Config struct {
	Port       string        `env:"PORT" envDefault:"8080"`
	EventFile  string        `env:"EVENT_FILE" envDefault:"event.yaml"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionMax int           `env:"SESSION_MAX" envDefault:"10000"`

	Store struct {
		Backend    string `env:"STORE_BACKEND" envDefault:"file"`
		Path       string `env:"STORE_PATH" envDefault:"data"`
		QuotaBytes int    `env:"STORE_QUOTA_BYTES" envDefault:"5242880"`
		RedisURL   string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"data/registrations.db"`
	}

	Database struct {
		URL      string `env:"DATABASE_URL"`
		Host     string `env:"DB_HOST" envDefault:"localhost"`
		Port     string `env:"DB_PORT" envDefault:"5432"`
		User     string `env:"DB_USER" envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:"postgres"`
		Name     string `env:"DB_NAME" envDefault:"eventlanding"`
		SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
	}

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// OperatorAPIEnabled exposes the stored registrations over HTTP.
	OperatorAPIEnabled bool `env:"OPERATOR_API_ENABLED" envDefault:"false"`

	Calendar struct {
		ProdID      string `env:"ICS_PRODID" envDefault:"-//Codezen//Event//EN"`
		UIDDomain   string `env:"ICS_UID_DOMAIN" envDefault:"codezen"`
		Description string `env:"ICS_DESCRIPTION" envDefault:"Join Codezen. Learn, build, and connect."`
	}
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given environment instead of the process one.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendPostgres, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.SessionMax <= 0 {
		return errors.New("SESSION_MAX must be positive")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.Log.Format)
	}
	return nil
}

// DatabaseConfig converts the Postgres settings for the database package.
func (c Config) DatabaseConfig() database.Config {
	return database.Config{
		URL:      c.Database.URL,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		DBName:   c.Database.Name,
		SSLMode:  c.Database.SSLMode,
	}
}

// Event defaults applied when the content file leaves a field out.
const (
	DefaultEventTitle    = "Codezen Event"
	DefaultEventLocation = "University Campus"
	DefaultEventDuration = 2 * time.Hour
)
