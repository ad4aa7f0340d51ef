// Package board implements the bounded message log: validated appends with
// monotonically increasing ids, oldest-first eviction beyond a fixed
// capacity, and newest-first reads over a pluggable backing store.
package board

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/nfrund/guestbook/internal/domain"
	"github.com/nfrund/guestbook/internal/pubsub"
)

// EntryCreated is published with every entry once it has been stored.
var EntryCreated = pubsub.NewEvent[domain.Entry]("messages.created")

// Store is the backing store of a Log. Implementations own their data
// exclusively; nothing but the Log may mutate it.
type Store interface {
	// Append persists e and then evicts the oldest entries until at most
	// capacity remain, as one write. It returns the number of evicted entries.
	Append(ctx context.Context, e domain.Entry, capacity int) (int, error)
	// List returns every retained entry, newest first, in a fresh slice.
	List(ctx context.Context) ([]domain.Entry, error)
	// Close releases the store's resources.
	Close() error
}

// NewestReader is implemented by stores that can return their newest entry
// without listing the whole log. New uses it to seed the id generator.
type NewestReader interface {
	Newest(ctx context.Context) (domain.Entry, bool, error)
}

// Log is the bounded message log.
type Log struct {
	mu        sync.Mutex
	store     Store
	ids       *IDGenerator
	capacity  int
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity sets the number of retained entries. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithPublisher publishes every stored entry as an EntryCreated event.
func WithPublisher(p pubsub.Publisher) Option {
	return func(l *Log) { l.publisher = p }
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithIDGenerator replaces the id generator.
func WithIDGenerator(g *IDGenerator) Option {
	return func(l *Log) { l.ids = g }
}

// New creates a Log over store. The id generator is seeded from the newest
// stored entry so ids stay unique across restarts of a persistent store.
func New(ctx context.Context, store Store, opts ...Option) *Log {
	l := &Log{
		store:    store,
		ids:      NewIDGenerator(),
		capacity: domain.DefaultCapacity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if newest, ok, err := newestEntry(ctx, store); err != nil {
		l.logger.WarnContext(ctx, "Could not read existing entries to seed ids", "event", "board_seed_failure", "error", err)
	} else if ok {
		l.ids.Observe(newest.ID)
	}
	return l
}

func newestEntry(ctx context.Context, store Store) (domain.Entry, bool, error) {
	if r, ok := store.(NewestReader); ok {
		return r.Newest(ctx)
	}
	entries, err := store.List(ctx)
	if err != nil || len(entries) == 0 {
		return domain.Entry{}, false, err
	}
	return entries[0], true, nil
}

// Capacity returns the maximum number of retained entries.
func (l *Log) Capacity() int {
	return l.capacity
}

// Append validates in, stores it as a new entry and trims the log to capacity.
// It returns a *domain.ValidationError for unusable input and a
// *domain.StorageError when the backing store fails. Events are published
// while the log is still locked, so subscribers see entries in id order.
func (l *Log) Append(ctx context.Context, in domain.Input) (domain.Entry, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Entry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, at := l.ids.Next()
	entry := domain.Entry{
		ID:        id,
		Author:    in.Author,
		Content:   in.Content,
		CreatedAt: at.UTC(),
	}
	evicted, err := l.store.Append(ctx, entry, l.capacity)
	if err != nil {
		return domain.Entry{}, domain.NewStorageError("append", err)
	}

	l.logger.DebugContext(ctx, "Message appended", "event", "board_append", "id", entry.ID, "evicted", evicted)
	l.publish(ctx, entry)
	return entry, nil
}

// ReadAll returns every retained entry, newest first. The result is a copy.
//
// A store that cannot be read yields an empty slice instead of an error: the
// read path favours availability, and the fault is only visible in the logs.
func (l *Log) ReadAll(ctx context.Context) []domain.Entry {
	entries, err := l.store.List(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to read messages, serving empty list", "event", "board_read_failure", "error", err)
		return []domain.Entry{}
	}
	out := make([]domain.Entry, len(entries))
	copy(out, entries)
	return out
}

// Close closes the backing store.
func (l *Log) Close() error {
	return l.store.Close()
}

func (l *Log) publish(ctx context.Context, e domain.Entry) {
	if l.publisher == nil {
		return
	}
	meta := map[string]string{"entry_id": strconv.FormatUint(e.ID, 10)}
	if err := EntryCreated.Publish(ctx, l.publisher, e, meta); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish entry event", "event", "board_publish_failure", "id", e.ID, "error", err)
	}
}
