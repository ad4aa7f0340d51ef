// Package memory provides a process-local backing store for the message log.
// Its contents do not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/nfrund/guestbook/internal/domain"
)

// Store keeps entries in a slice, oldest first.
type Store struct {
	mu      sync.RWMutex
	entries []domain.Entry
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Append adds e and drops the oldest entries beyond capacity.
func (s *Store) Append(_ context.Context, e domain.Entry, capacity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	evicted := 0
	if capacity > 0 && len(s.entries) > capacity {
		evicted = len(s.entries) - capacity
		// Copy the survivors so the evicted prefix can be collected.
		s.entries = append([]domain.Entry(nil), s.entries[evicted:]...)
	}
	return evicted, nil
}

// List returns the entries newest first.
func (s *Store) List(_ context.Context) ([]domain.Entry, error) {
	s.mu.RLock()
	out := append([]domain.Entry(nil), s.entries...)
	s.mu.RUnlock()
	return lo.Reverse(out), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
