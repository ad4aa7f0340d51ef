// Package database holds the SurrealDB connection setup and small generic
// query helpers shared by the surreal storage backend.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/surrealdb/surrealdb.go"
)

// Settings are the connection parameters for a SurrealDB instance.
type Settings struct {
	URL  string
	User string
	Pass string
	NS   string
	DB   string
}

// Validate reports the first missing setting.
func (s Settings) Validate() error {
	switch {
	case s.URL == "":
		return errors.New("surreal url is required")
	case s.NS == "":
		return errors.New("surreal namespace is required")
	case s.DB == "":
		return errors.New("surreal database is required")
	}
	return nil
}

// NewDB connects, signs in and selects the namespace and database.
func NewDB(ctx context.Context, s Settings) (*surrealdb.DB, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	db, err := surrealdb.FromEndpointURLString(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb at %s: %w", redactDBURL(s.URL), err)
	}

	if s.User != "" {
		authData := &surrealdb.Auth{
			Username: s.User,
			Password: s.Pass,
		}
		if _, err = db.SignIn(ctx, authData); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
	}

	if err = db.Use(ctx, s.NS, s.DB); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/db: %w", err)
	}

	slog.InfoContext(ctx, "Connected to SurrealDB", "event", "db_connect_success",
		"db_url", redactDBURL(s.URL), "namespace", s.NS, "database", s.DB)
	return db, nil
}

// redactDBURL returns dbURL with any password replaced, for logging.
func redactDBURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	return parsedURL.Redacted()
}
