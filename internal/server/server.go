package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/guestbook/internal/config"
	"github.com/nfrund/guestbook/internal/handlers"
	"github.com/nfrund/guestbook/internal/middleware"
	"github.com/nfrund/guestbook/internal/pubsub"
)

// Dependencies are the services the HTTP server is built from.
type Dependencies struct {
	Config     *config.Config
	Logger     *slog.Logger
	Log        handlers.MessageLog
	Subscriber pubsub.Subscriber
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	cfg      *config.Config
	logger   *slog.Logger
	messages *handlers.MessageHandler
	live     *handlers.LiveHandler
}

// New creates a Server with its middleware and routes in place.
func New(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())
	if deps.Config.BodyLimit != "" {
		e.Use(echomw.BodyLimit(deps.Config.BodyLimit))
	}

	s := &Server{
		E:        e,
		cfg:      deps.Config,
		logger:   logger,
		messages: handlers.NewMessageHandler(deps.Log),
	}
	if deps.Subscriber != nil {
		s.live = handlers.NewLiveHandler(deps.Subscriber)
	}
	s.RegisterRoutes()
	return s
}

// errorHandler renders every error as {"error": message}. Errors that are
// not echo.HTTPErrors become 500s without leaking their text.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = fmt.Sprint(he.Message)
			}
		} else {
			middleware.FromContext(c.Request().Context()).Error("Unhandled request error", "event", "http_unhandled_error", "error", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, handlers.ErrorResponse{Error: msg})
		}
		if werr != nil {
			logger.Error("Failed to write error response", "event", "http_error_write_failure", "error", werr)
		}
	}
}
