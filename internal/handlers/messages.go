package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/guestbook/internal/domain"
	"github.com/nfrund/guestbook/internal/middleware"
)

// MessageLog is the part of the board the HTTP layer needs.
type MessageLog interface {
	Append(ctx context.Context, in domain.Input) (domain.Entry, error)
	ReadAll(ctx context.Context) []domain.Entry
}

// MessageHandler serves the /messages resource.
type MessageHandler struct {
	log MessageLog
}

// NewMessageHandler creates a MessageHandler over log.
func NewMessageHandler(log MessageLog) *MessageHandler {
	return &MessageHandler{log: log}
}

// List returns every retained message, newest first.
func (h *MessageHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.log.ReadAll(c.Request().Context()))
}

// Create appends a message.
func (h *MessageHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		logger.DebugContext(ctx, "Rejected undecodable message body", "event", "message_bind_failure", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}

	entry, err := h.log.Append(ctx, req.Input())
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			logger.DebugContext(ctx, "Rejected invalid message", "event", "message_validation_failure", "field", verr.Field, "reason", verr.Message)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message})
		}
		logger.ErrorContext(ctx, "Failed to save message", "event", "message_save_failure", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save message", Details: err.Error()})
	}

	logger.InfoContext(ctx, "Message saved", "event", "message_saved", "id", entry.ID)
	return c.JSON(http.StatusOK, statusSuccess)
}

// Options answers CORS preflight requests.
func (h *MessageHandler) Options(c echo.Context) error {
	return c.JSON(http.StatusOK, statusOK)
}

// Health reports that the process is serving.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
