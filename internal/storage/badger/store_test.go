package badgerstore

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/guestbook/internal/board"
	"github.com/nfrund/guestbook/internal/storage/storagetest"
)

func openMem(t *testing.T) *Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	return New(db)
}

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) board.Store { return openMem(t) })
}

func TestStore_SurvivesReopen(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, nil)
	r.NoError(err)
	for i := 1; i <= 4; i++ {
		_, err := s.Append(ctx, storagetest.NewEntry(i), 3)
		r.NoError(err)
	}
	r.NoError(s.Close())

	s, err = Open(dir, nil)
	r.NoError(err)
	defer s.Close()

	entries, err := s.List(ctx)
	r.NoError(err)
	r.Len(entries, 3)
	r.Equal(storagetest.NewEntry(4).ID, entries[0].ID)
	r.Equal(storagetest.NewEntry(2).ID, entries[2].ID)
}

func TestStore_CorruptValue(t *testing.T) {
	r := require.New(t)
	s := openMem(t)
	defer s.Close()

	r.NoError(s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(42), []byte("{broken"))
	}))

	_, err := s.List(context.Background())
	r.Error(err)
}

func TestKey_HeadIsNewest(t *testing.T) {
	r := require.New(t)
	r.Less(string(key(2)), string(key(1)))
	r.Less(string(key(1_700_000_000_001)), string(key(1_700_000_000_000)))
}
