package handlers

import (
	"github.com/nfrund/guestbook/internal/domain"
)

// PostMessageRequest is the body of POST /messages. Clients send either
// author and content, or a single message field.
type PostMessageRequest struct {
	Author  string `json:"author" form:"author"`
	Content string `json:"content" form:"content"`
	Message string `json:"message" form:"message"`
}

// Input converts the request into a domain submission.
func (r PostMessageRequest) Input() domain.Input {
	return domain.Input{
		Author:  r.Author,
		Content: r.Content,
		Message: r.Message,
	}
}
