// Package storage selects and opens the board.Store backend named in the
// configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/nfrund/guestbook/internal/board"
	"github.com/nfrund/guestbook/internal/config"
	badgerstore "github.com/nfrund/guestbook/internal/storage/badger"
	"github.com/nfrund/guestbook/internal/storage/filestore"
	"github.com/nfrund/guestbook/internal/storage/memory"
	pebblestore "github.com/nfrund/guestbook/internal/storage/pebble"
	"github.com/nfrund/guestbook/internal/storage/surreal"
)

// Open opens the backend selected by cfg.Backend. The choice is made here,
// once; an unknown name is a configuration error.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (board.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		store    board.Store
		err      error
		location string
	)
	switch cfg.Backend {
	case config.BackendMemory:
		store = memory.New()
	case config.BackendFile:
		location = cfg.FilePath
		store = filestore.New(afero.NewOsFs(), cfg.FilePath)
	case config.BackendPebble:
		location = cfg.PebbleDir
		store, err = pebblestore.Open(cfg.PebbleDir, pebblestore.Options{})
	case config.BackendBadger:
		location = cfg.BadgerDir
		store, err = badgerstore.Open(cfg.BadgerDir, logger)
	case config.BackendSurreal:
		store, err = surreal.Open(ctx, cfg.Surreal())
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}

	logger.InfoContext(ctx, "Storage opened", "event", "storage_open", "backend", cfg.Backend, "location", location)
	return store, nil
}
