// Package badgerstore keeps the message log as a list in BadgerDB.
//
// Keys are "list/" followed by the big-endian complement of the entry id, so
// a forward prefix scan starts at the newest entry (the head of the list) and
// trimming keeps the first capacity keys.
package badgerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/dgraph-io/badger/v4"

	"github.com/nfrund/guestbook/internal/domain"
)

var prefix = []byte("list/")

func key(id uint64) []byte {
	k := make([]byte, len(prefix)+8)
	copy(k, prefix)
	binary.BigEndian.PutUint64(k[len(prefix):], math.MaxUint64-id)
	return k
}

// Store is a board.Store backed by BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens or creates the database in dir. An empty dir opens an
// in-memory database.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return New(db), nil
}

// New wraps an already opened database.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Append pushes e onto the head of the list and trims the tail to capacity
// in the same transaction.
func (s *Store) Append(_ context.Context, e domain.Entry, capacity int) (int, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("encode entry %d: %w", e.ID, err)
	}

	evicted := 0
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key(e.ID), value); err != nil {
			return err
		}
		if capacity <= 0 {
			return nil
		}

		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		n := 0
		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			n++
			if n > capacity {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		it.Close()

		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		evicted = len(stale)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return evicted, nil
}

// List returns the stored entries, newest first.
func (s *Store) List(_ context.Context) ([]domain.Entry, error) {
	entries := []domain.Entry{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(value []byte) error {
				var e domain.Entry
				if err := json.Unmarshal(value, &e); err != nil {
					return fmt.Errorf("decode key %x: %w", item.Key(), err)
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's internal logging to slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
