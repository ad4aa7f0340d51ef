package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nfrund/guestbook/internal/app"
	"github.com/nfrund/guestbook/internal/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server on GUESTBOOK_ADDR until interrupted.

On SIGINT or SIGTERM the server stops accepting requests, waits up to
GUESTBOOK_SHUTDOWN_TIMEOUT for in-flight requests and closes the storage backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogFormat, cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				logger.Error("Failed to initialize application", "event", "app_init_failure", "error", err)
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Error("Failed to close application", "event", "app_close_failure", "error", err)
				}
			}()

			if err := a.StartActivityLog(ctx); err != nil {
				logger.Warn("Activity log unavailable", "event", "activity_log_failure", "error", err)
			}

			srv, err := a.Server()
			if err != nil {
				return err
			}
			if err := srv.Start(ctx); err != nil {
				logger.Error("HTTP server failed", "event", "server_failure", "error", err)
				return err
			}
			logger.Info("Server stopped", "event", "server_stopped")
			return nil
		},
	}
}
