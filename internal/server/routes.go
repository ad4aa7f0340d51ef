package server

import (
	"github.com/nfrund/guestbook/internal/handlers"
	"github.com/nfrund/guestbook/internal/middleware"
)

// RegisterRoutes sets up all the application routes. Methods without a
// route on /messages are answered with 405 by the router.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(s.cfg.PostRateLimit)

	s.E.GET("/messages", s.messages.List)
	s.E.POST("/messages", s.messages.Create, rateLimiter)
	s.E.OPTIONS("/messages", s.messages.Options)

	if s.live != nil {
		s.E.GET("/messages/live", s.live.Stream)
	}

	s.E.GET("/health", handlers.Health)
}
