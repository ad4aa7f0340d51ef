package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nfrund/guestbook/internal/config"
	"github.com/nfrund/guestbook/internal/logging"
)

var backendFlag string

// NewRootCmd builds the guestbook command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guestbook",
		Short: "A bounded message board",
		Long: `guestbook keeps the most recent messages posted to it and serves them over HTTP.

Available commands:
  serve      Run the HTTP server
  post       Append a message to the board
  list       Print the board, newest first
  version    Print the version

Configuration is read from the environment and an optional .env file.
Use "guestbook [command] --help" for more information about a command.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend, overrides GUESTBOOK_BACKEND (memory, file, pebble, badger, surreal)")

	rootCmd.AddCommand(newServeCmd(), newPostCmd(), newListCmd(), newVersionCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration, applying flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backendFlag != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(backendFlag))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// commandLogger logs to w so that command output on stdout stays clean.
func commandLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	logger := logging.NewWithWriter(w, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger
}
