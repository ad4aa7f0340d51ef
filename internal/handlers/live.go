package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/guestbook/internal/board"
	"github.com/nfrund/guestbook/internal/middleware"
	"github.com/nfrund/guestbook/internal/pubsub"
)

const (
	liveBuffer       = 32
	liveWriteTimeout = 5 * time.Second
)

// LiveHandler streams newly created messages over a WebSocket.
type LiveHandler struct {
	sub      pubsub.Subscriber
	done     chan struct{}
	stopOnce sync.Once
}

// NewLiveHandler creates a LiveHandler reading from sub.
func NewLiveHandler(sub pubsub.Subscriber) *LiveHandler {
	return &LiveHandler{sub: sub, done: make(chan struct{})}
}

// Shutdown closes every open stream with a going-away status.
func (h *LiveHandler) Shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Stream upgrades the request and writes every new entry as a JSON text
// frame until the client goes away. Clients that fall behind lose frames.
func (h *LiveHandler) Stream(c echo.Context) error {
	logger := middleware.FromContext(c.Request().Context())
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Subscribe before upgrading so no entry created after the handshake is missed.
	frames := make(chan []byte, liveBuffer)
	err := h.sub.Subscribe(ctx, board.EntryCreated.Topic(), func(_ context.Context, msg pubsub.Message) error {
		select {
		case frames <- msg.Payload:
		default:
			logger.Warn("Live client is too slow, dropping frame", "event", "live_frame_dropped", "entry_id", msg.Metadata["entry_id"])
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to subscribe live client", "event", "live_subscribe_failure", "error", err)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Live updates unavailable"})
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		// Accept has already written the handshake failure.
		logger.Debug("Failed to upgrade live connection", "event", "live_upgrade_failure", "error", err)
		return nil
	}
	defer conn.CloseNow()

	logger.Debug("Live client connected", "event", "live_connect")
	ctx = conn.CloseRead(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Live client disconnected", "event", "live_disconnect")
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		case <-h.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return nil
		case frame := <-frames:
			wctx, wcancel := context.WithTimeout(ctx, liveWriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, frame)
			wcancel()
			if err != nil {
				logger.Debug("Live write failed", "event", "live_write_failure", "error", err)
				return nil
			}
		}
	}
}
