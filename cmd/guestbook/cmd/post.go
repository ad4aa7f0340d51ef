package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/guestbook/internal/app"
	"github.com/nfrund/guestbook/internal/domain"
)

func newPostCmd() *cobra.Command {
	var author, content string

	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Append a message to the board",
		Long: `Append a message directly to the configured storage backend.

Examples:
  guestbook post --content "hello"
  guestbook post --author Ann --content "hello from the terminal"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := commandLogger(cmd.ErrOrStderr(), cfg)

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.Log.Append(cmd.Context(), domain.Input{Author: author, Content: content})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted message %d\n", entry.ID)
			return nil
		},
	}
	postCmd.Flags().StringVar(&author, "author", "", "author name (optional)")
	postCmd.Flags().StringVar(&content, "content", "", "message text")
	return postCmd
}
