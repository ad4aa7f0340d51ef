package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Start serves HTTP on the configured address until ctx is canceled, then
// shuts down gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "event", "server_start", "addr", s.cfg.Addr)
		if err := s.E.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server", "event", "server_shutdown", "timeout", timeout)
	if s.live != nil {
		s.live.Shutdown()
	}
	if err := s.E.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
