// Package filestore keeps the message log as a single JSON document on an
// afero filesystem. Every append rewrites the whole file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/nfrund/guestbook/internal/domain"
)

// DefaultFileName is the file created in the temp directory when no path is configured.
const DefaultFileName = "messages.json"

// DefaultPath returns the default location of the log file.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), DefaultFileName)
}

// Store is a board.Store backed by one JSON file holding the entries newest first.
type Store struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// New creates a Store writing to path on fs. The file is created on the first append.
func New(fs afero.Fs, path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{fs: fs, path: path}
}

// NewOS creates a Store on the operating system filesystem.
func NewOS(path string) *Store {
	return New(afero.NewOsFs(), path)
}

// Path returns the location of the log file.
func (s *Store) Path() string {
	return s.path
}

// Append prepends e, drops everything beyond capacity and rewrites the file.
// An unreadable file is left untouched.
func (s *Store) Append(_ context.Context, e domain.Entry, capacity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return 0, err
	}

	entries = append([]domain.Entry{e}, entries...)
	evicted := 0
	if capacity > 0 && len(entries) > capacity {
		evicted = len(entries) - capacity
		entries = entries[:capacity]
	}

	if err := s.save(entries); err != nil {
		return 0, err
	}
	return evicted, nil
}

// List returns the stored entries, newest first.
func (s *Store) List(_ context.Context) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Close is a no-op; the file is not held open between calls.
func (s *Store) Close() error {
	return nil
}

func (s *Store) load() ([]domain.Entry, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []domain.Entry{}, nil
	}

	var entries []domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

// save writes entries to a sibling temp file and renames it over the log,
// so readers never observe a half-written document.
func (s *Store) save(entries []domain.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
