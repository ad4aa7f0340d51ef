// Package storagetest holds the behaviour every board.Store backend must
// share, expressed as a reusable test suite.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/guestbook/internal/board"
	"github.com/nfrund/guestbook/internal/domain"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) board.Store

// base is an arbitrary fixed millisecond timestamp used for generated ids.
var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewEntry builds the n-th test entry; ids increase with n.
func NewEntry(n int) domain.Entry {
	at := base.Add(time.Duration(n) * time.Millisecond)
	return domain.Entry{
		ID:        uint64(at.UnixMilli()),
		Author:    fmt.Sprintf("author-%d", n),
		Content:   fmt.Sprintf("content %d", n),
		CreatedAt: at,
	}
}

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("EmptyStoreListsNothing", func(t *testing.T) {
		s := open(t, newStore)
		entries, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("ListsNewestFirst", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		for i := 1; i <= 5; i++ {
			evicted, err := s.Append(ctx, NewEntry(i), 10)
			require.NoError(t, err)
			assert.Zero(t, evicted)
		}

		entries, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		for i, e := range entries {
			want := NewEntry(5 - i)
			assert.Equal(t, want.ID, e.ID)
			assert.Equal(t, want.Author, e.Author)
			assert.Equal(t, want.Content, e.Content)
			assert.True(t, want.CreatedAt.Equal(e.CreatedAt), "createdAt round-trips")
		}
	})

	t.Run("EvictsOldestBeyondCapacity", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		const capacity = 3
		total := 0
		for i := 1; i <= 7; i++ {
			evicted, err := s.Append(ctx, NewEntry(i), capacity)
			require.NoError(t, err)
			total += evicted
		}
		assert.Equal(t, 4, total)

		entries, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, capacity)
		assert.Equal(t, []uint64{NewEntry(7).ID, NewEntry(6).ID, NewEntry(5).ID}, ids(entries))
	})

	t.Run("ListReturnsFreshSlices", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		_, err := s.Append(ctx, NewEntry(1), 10)
		require.NoError(t, err)

		first, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, first, 1)
		first[0].Content = "mutated"

		second, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, NewEntry(1).Content, second[0].Content)
	})

	t.Run("KeepsAnonymousEntries", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		e := NewEntry(1)
		e.Author = ""
		_, err := s.Append(ctx, e, 10)
		require.NoError(t, err)

		entries, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Empty(t, entries[0].Author)
	})
}

func open(t *testing.T, newStore Factory) board.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ids(entries []domain.Entry) []uint64 {
	return lo.Map(entries, func(e domain.Entry, _ int) uint64 { return e.ID })
}
