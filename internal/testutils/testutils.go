package testutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"github.com/nfrund/guestbook/internal/config"
	"github.com/nfrund/guestbook/internal/logging"
)

// ConfigForTests applies the optional .env.test file at the module root and
// returns the resulting configuration. Variables already set in the process
// environment take precedence over the file. SurrealDB namespace and database
// default to guestbook_test so integration tests never touch real data.
func ConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	root := moduleRoot(t)
	vars, err := godotenv.Read(filepath.Join(root, ".env.test"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("failed to read .env.test: %v", err)
	}
	for key, value := range vars {
		if _, set := os.LookupEnv(key); !set {
			t.Setenv(key, value)
		}
	}
	for _, key := range []string{"GUESTBOOK_SURREAL_NS", "GUESTBOOK_SURREAL_DB"} {
		if os.Getenv(key) == "" {
			t.Setenv(key, "guestbook_test")
		}
	}

	cfg, err := config.Parse(os.Environ())
	if err != nil {
		t.Fatalf("failed to parse test configuration: %v", err)
	}
	logging.New(cfg.LogFormat, cfg.LogLevel)
	return cfg
}

// moduleRoot walks up from the working directory to the directory holding go.mod.
func moduleRoot(t *testing.T) string {
	t.Helper()
	path, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}
}
