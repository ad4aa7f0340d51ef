package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"github.com/nfrund/guestbook/internal/database"
	"github.com/nfrund/guestbook/internal/storage/filestore"
)

// Storage backend names accepted by GUESTBOOK_BACKEND.
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendPebble  = "pebble"
	BackendBadger  = "badger"
	BackendSurreal = "surreal"
)

// Backends lists every supported storage backend.
var Backends = []string{BackendMemory, BackendFile, BackendPebble, BackendBadger, BackendSurreal}

// Config holds all configuration for the application.
type Config struct {
	Addr            string        `env:"GUESTBOOK_ADDR,default=:8080"`
	Backend         string        `env:"GUESTBOOK_BACKEND,default=file"`
	MaxEntries      int           `env:"GUESTBOOK_MAX_ENTRIES,default=1000"`
	FilePath        string        `env:"GUESTBOOK_FILE_PATH"`
	PebbleDir       string        `env:"GUESTBOOK_PEBBLE_DIR,default=data/pebble"`
	BadgerDir       string        `env:"GUESTBOOK_BADGER_DIR,default=data/badger"`
	SurrealURL      string        `env:"GUESTBOOK_SURREAL_URL"`
	SurrealUser     string        `env:"GUESTBOOK_SURREAL_USER"`
	SurrealPass     string        `env:"GUESTBOOK_SURREAL_PASS"`
	SurrealNS       string        `env:"GUESTBOOK_SURREAL_NS"`
	SurrealDB       string        `env:"GUESTBOOK_SURREAL_DB"`
	PostRateLimit   float64       `env:"GUESTBOOK_POST_RATE_LIMIT,default=10"`
	BodyLimit       string        `env:"GUESTBOOK_BODY_LIMIT,default=16K"`
	ShutdownTimeout time.Duration `env:"GUESTBOOK_SHUTDOWN_TIMEOUT,default=10s"`
	LogFormat       string        `env:"LOG_FORMAT,default=text"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
}

// Load reads a .env file if present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return Parse(os.Environ())
}

// Parse builds a Config from KEY=value pairs, applying defaults.
func Parse(environ []string) (*Config, error) {
	es, err := env.EnvironToEnvSet(environ)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg := &Config{}
	if err := env.Unmarshal(es, cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.FilePath == "" {
		cfg.FilePath = filestore.DefaultPath()
	}
	return cfg, nil
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(Backends, c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(Backends, ", ")))
	}
	if c.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("GUESTBOOK_MAX_ENTRIES must be positive, got %d", c.MaxEntries))
	}
	if c.PostRateLimit < 0 {
		errs = append(errs, fmt.Errorf("GUESTBOOK_POST_RATE_LIMIT must not be negative, got %g", c.PostRateLimit))
	}
	if c.Backend == BackendSurreal {
		if err := c.Surreal().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("backend surreal: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Surreal returns the SurrealDB connection settings.
func (c *Config) Surreal() database.Settings {
	return database.Settings{
		URL:  c.SurrealURL,
		User: c.SurrealUser,
		Pass: c.SurrealPass,
		NS:   c.SurrealNS,
		DB:   c.SurrealDB,
	}
}
