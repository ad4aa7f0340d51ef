// Package app wires the guestbook services together in a dependency
// injection container.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/nfrund/guestbook/internal/board"
	"github.com/nfrund/guestbook/internal/config"
	"github.com/nfrund/guestbook/internal/domain"
	"github.com/nfrund/guestbook/internal/pubsub"
	"github.com/nfrund/guestbook/internal/server"
	"github.com/nfrund/guestbook/internal/storage"
)

// App owns the container and the long-lived services resolved from it.
type App struct {
	injector *do.RootScope
	logger   *slog.Logger

	// Log is the bounded message log.
	Log *board.Log
	// Bus carries entry events between the log and live subscribers.
	Bus *pubsub.WatermillBridge
}

// New registers every provider and resolves the message log, which opens
// the configured storage backend.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.Provide(injector, provideBus)
	do.Provide(injector, func(i do.Injector) (board.Store, error) {
		return storage.Open(ctx, do.MustInvoke[*config.Config](i), do.MustInvoke[*slog.Logger](i))
	})
	do.Provide(injector, func(i do.Injector) (*board.Log, error) {
		return provideLog(ctx, i)
	})
	do.Provide(injector, provideServer)

	bus, err := do.Invoke[*pubsub.WatermillBridge](injector)
	if err != nil {
		return nil, err
	}
	l, err := do.Invoke[*board.Log](injector)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	return &App{injector: injector, logger: logger, Log: l, Bus: bus}, nil
}

func provideBus(i do.Injector) (*pubsub.WatermillBridge, error) {
	return pubsub.NewWatermillBridge(do.MustInvoke[*slog.Logger](i)), nil
}

func provideLog(ctx context.Context, i do.Injector) (*board.Log, error) {
	store, err := do.Invoke[board.Store](i)
	if err != nil {
		return nil, err
	}
	cfg := do.MustInvoke[*config.Config](i)
	return board.New(ctx, store,
		board.WithCapacity(cfg.MaxEntries),
		board.WithPublisher(do.MustInvoke[*pubsub.WatermillBridge](i)),
		board.WithLogger(do.MustInvoke[*slog.Logger](i)),
	), nil
}

func provideServer(i do.Injector) (*server.Server, error) {
	bus := do.MustInvoke[*pubsub.WatermillBridge](i)
	return server.New(server.Dependencies{
		Config:     do.MustInvoke[*config.Config](i),
		Logger:     do.MustInvoke[*slog.Logger](i),
		Log:        do.MustInvoke[*board.Log](i),
		Subscriber: bus,
	}), nil
}

// Server resolves the HTTP server.
func (a *App) Server() (*server.Server, error) {
	return do.Invoke[*server.Server](a.injector)
}

// StartActivityLog logs every new entry until ctx is canceled.
func (a *App) StartActivityLog(ctx context.Context) error {
	return board.EntryCreated.Subscribe(ctx, a.Bus, func(ctx context.Context, e domain.Entry) error {
		a.logger.InfoContext(ctx, "New message on the board", "event", "board_activity",
			"id", e.ID, "author", e.Author, "length", len([]rune(e.Content)))
		return nil
	})
}

// Close stops the event bus and then closes the storage backend.
func (a *App) Close() error {
	return errors.Join(a.Bus.Close(), a.Log.Close())
}
