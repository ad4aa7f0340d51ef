// Package pebblestore keeps the message log in a Pebble key-value store.
// Each entry lives under "note/" followed by its big-endian id, so key order
// is creation order.
package pebblestore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/nfrund/guestbook/internal/domain"
)

var (
	prefix     = []byte("note/")
	upperBound = []byte("note0") // '0' follows '/'
)

func key(id uint64) []byte {
	k := make([]byte, len(prefix)+8)
	copy(k, prefix)
	binary.BigEndian.PutUint64(k[len(prefix):], id)
	return k
}

// Options tunes how the database is opened.
type Options struct {
	// FS overrides the filesystem, e.g. vfs.NewMem() in tests.
	FS vfs.FS
	// NoSync commits writes without waiting for fsync.
	NoSync bool
}

// Store is a board.Store backed by Pebble.
type Store struct {
	mu        sync.Mutex
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
}

// Open opens or creates the database in dir.
func Open(dir string, opts Options) (*Store, error) {
	po := &pebble.Options{}
	if opts.FS != nil {
		po.FS = opts.FS
	}
	db, err := pebble.Open(dir, po)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", dir, err)
	}

	wo := pebble.Sync
	if opts.NoSync {
		wo = pebble.NoSync
	}
	return &Store{db: db, writeOpts: wo}, nil
}

func (s *Store) newIter() (*pebble.Iterator, error) {
	return s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upperBound})
}

// Append writes e and deletes the oldest keys beyond capacity in one batch.
func (s *Store) Append(_ context.Context, e domain.Entry, capacity int) (int, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("encode entry %d: %w", e.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.keys()
	if err != nil {
		return 0, err
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.Set(key(e.ID), value, nil); err != nil {
		return 0, err
	}

	evicted := 0
	if capacity > 0 {
		// existing is oldest first and never contains e's key, ids being unique.
		if excess := len(existing) + 1 - capacity; excess > 0 {
			for _, k := range existing[:excess] {
				if err := b.Delete(k, nil); err != nil {
					return 0, err
				}
			}
			evicted = excess
		}
	}

	if err := b.Commit(s.writeOpts); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return evicted, nil
}

// keys returns copies of every entry key, oldest first.
func (s *Store) keys() ([][]byte, error) {
	iter, err := s.newIter()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out [][]byte
	for ok := iter.First(); ok; ok = iter.Next() {
		out = append(out, append([]byte(nil), iter.Key()...))
	}
	return out, iter.Error()
}

// List returns the stored entries, newest first.
func (s *Store) List(_ context.Context) ([]domain.Entry, error) {
	iter, err := s.newIter()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	entries := []domain.Entry{}
	for ok := iter.Last(); ok; ok = iter.Prev() {
		var e domain.Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("decode key %x: %w", iter.Key(), err)
		}
		entries = append(entries, e)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
