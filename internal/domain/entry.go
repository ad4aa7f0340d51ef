package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxAuthorLength is the number of characters kept from a submitted author.
	MaxAuthorLength = 20
	// MaxContentLength is the number of characters kept from submitted content.
	MaxContentLength = 500
	// DefaultCapacity is the number of entries a log retains before evicting the oldest.
	DefaultCapacity = 1000
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

// Entry is one retained message on the board.
// Entries are created by the log at append time and never modified afterwards.
type Entry struct {
	ID        uint64    `json:"id,string"`
	Author    string    `json:"author,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Input is an unvalidated submission. Message is accepted as an alias for
// Content so that single-field clients ({"message": "..."}) keep working.
type Input struct {
	Author  string `json:"author,omitempty"`
	Content string `json:"content,omitempty" validate:"required"`
	Message string `json:"message,omitempty"`
}

// Normalize returns a copy of the input with Unicode normalized, surrounding
// whitespace trimmed, Message folded into Content, and both fields truncated
// to their character limits. Oversized input is truncated, never rejected.
func (in Input) Normalize() Input {
	content := in.Content
	if strings.TrimSpace(content) == "" {
		content = in.Message
	}
	return Input{
		Author:  clip(in.Author, MaxAuthorLength),
		Content: clip(content, MaxContentLength),
	}
}

// Validate checks a normalized input. It returns a *ValidationError when the
// content is missing or empty.
func (in Input) Validate() error {
	if err := validatorInstance.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return NewValidationError(strings.ToLower(verrs[0].Field()), "content must not be empty")
		}
		return NewValidationError("", err.Error())
	}
	return nil
}

// clip trims s and cuts it to at most n runes.
func clip(s string, n int) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
