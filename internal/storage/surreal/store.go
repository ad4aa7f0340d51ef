// Package surreal keeps the message log in a SurrealDB table, one record per
// entry keyed by its id.
package surreal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/guestbook/internal/database"
	"github.com/nfrund/guestbook/internal/domain"
)

const (
	defineSchema = `
DEFINE TABLE IF NOT EXISTS note SCHEMALESS;
DEFINE INDEX IF NOT EXISTS note_seq ON note FIELDS seq UNIQUE;`

	// appendNote creates the record and evicts everything ranked beyond
	// $capacity in one transaction. The DELETE returns the evicted rows.
	appendNote = `
BEGIN TRANSACTION;
CREATE type::thing('note', $seq) CONTENT $data RETURN NONE;
DELETE note WHERE seq IN (SELECT VALUE seq FROM note ORDER BY seq DESC START $capacity) RETURN BEFORE;
COMMIT TRANSACTION;`

	listNotes = `SELECT seq, author, content, created_at FROM note ORDER BY seq DESC`

	clearNotes = `DELETE note`
)

type record struct {
	Seq       uint64 `json:"seq"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toRecord(e domain.Entry) record {
	return record{
		Seq:       e.ID,
		Author:    e.Author,
		Content:   e.Content,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (r record) entry() (domain.Entry, error) {
	at, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("note %d: bad created_at %q: %w", r.Seq, r.CreatedAt, err)
	}
	return domain.Entry{ID: r.Seq, Author: r.Author, Content: r.Content, CreatedAt: at}, nil
}

// Store is a board.Store backed by SurrealDB.
type Store struct {
	mu sync.Mutex
	db *surrealdb.DB
}

// Open connects with settings and makes sure the note table exists.
func Open(ctx context.Context, settings database.Settings) (*Store, error) {
	db, err := database.NewDB(ctx, settings)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, db)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an open connection and defines the schema.
func New(ctx context.Context, db *surrealdb.DB) (*Store, error) {
	if err := database.Execute(ctx, db, defineSchema, nil); err != nil {
		return nil, fmt.Errorf("define note schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Append stores e and removes the oldest notes beyond capacity.
func (s *Store) Append(ctx context.Context, e domain.Entry, capacity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := map[string]any{
		"seq":      e.ID,
		"data":     toRecord(e),
		"capacity": capacity,
	}
	results, err := database.QueryAll[record](ctx, s.db, appendNote, params)
	if err != nil {
		return 0, err
	}

	evicted := 0
	for _, rows := range results {
		evicted += len(rows)
	}
	return evicted, nil
}

// List returns the stored entries, newest first.
func (s *Store) List(ctx context.Context) ([]domain.Entry, error) {
	rows, err := database.Query[record](ctx, s.db, listNotes, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Newest returns the note with the highest seq, if any.
func (s *Store) Newest(ctx context.Context) (domain.Entry, bool, error) {
	r, err := database.QueryOne[record](ctx, s.db, listNotes, nil)
	if err != nil || r == nil {
		return domain.Entry{}, false, err
	}
	e, err := r.entry()
	if err != nil {
		return domain.Entry{}, false, err
	}
	return e, true, nil
}

// Clear removes every note. Used to reset test databases.
func (s *Store) Clear(ctx context.Context) error {
	return database.Execute(ctx, s.db, clearNotes, nil)
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close(context.Background())
}
