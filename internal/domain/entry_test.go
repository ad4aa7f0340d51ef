package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_Normalize(t *testing.T) {
	tests := []struct {
		name        string
		in          Input
		wantAuthor  string
		wantContent string
	}{
		{"trims whitespace", Input{Author: "  Ann ", Content: "\thello \n"}, "Ann", "hello"},
		{"message is an alias for content", Input{Message: " hi there "}, "", "hi there"},
		{"content wins over message", Input{Content: "a", Message: "b"}, "", "a"},
		{"blank content falls back to message", Input{Content: "   ", Message: "b"}, "", "b"},
		{"author truncated", Input{Author: strings.Repeat("x", 30), Content: "c"}, strings.Repeat("x", MaxAuthorLength), "c"},
		{"content truncated", Input{Content: strings.Repeat("a", 600)}, "", strings.Repeat("a", MaxContentLength)},
		{"truncation counts characters not bytes", Input{Content: strings.Repeat("\u00e9", 501)}, "", strings.Repeat("\u00e9", MaxContentLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.wantAuthor, got.Author)
			assert.Equal(t, tt.wantContent, got.Content)
			assert.Empty(t, got.Message)
		})
	}
}

func TestInput_NormalizeComposesCharacters(t *testing.T) {
	// "e" followed by a combining acute accent is one character after NFC.
	decomposed := strings.Repeat("e\u0301", MaxContentLength+1)

	got := Input{Content: decomposed}.Normalize()

	assert.Equal(t, MaxContentLength, utf8.RuneCountInString(got.Content))
}

func TestInput_Validate(t *testing.T) {
	t.Run("accepts content", func(t *testing.T) {
		require.NoError(t, Input{Content: "hello"}.Normalize().Validate())
	})

	for _, in := range []Input{{}, {Content: "  "}, {Author: "Ann"}, {Message: "\n\t"}} {
		t.Run(fmt.Sprintf("rejects %+v", in), func(t *testing.T) {
			err := in.Normalize().Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "content", verr.Field)
			assert.NotErrorIs(t, err, ErrStorage)
		})
	}
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("append", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "storage append failed: disk full", err.Error())

	wrapped := fmt.Errorf("board: %w", err)
	assert.Same(t, err, NewStorageError("list", wrapped), "existing storage errors are not re-wrapped")
}

func TestEntry_JSON(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	e := Entry{ID: 1714566600000, Author: "Ann", Content: "hello", CreatedAt: at}

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1714566600000","author":"Ann","content":"hello","createdAt":"2024-05-01T12:30:00Z"}`, string(raw))

	anon, err := json.Marshal(Entry{ID: 2, Content: "x", CreatedAt: at})
	require.NoError(t, err)
	assert.NotContains(t, string(anon), "author")
}
