package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nfrund/guestbook/internal/app"
	"github.com/nfrund/guestbook/internal/domain"
)

func newListCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the board, newest first",
		Long: `Print the messages retained by the configured storage backend, newest first.

Output formats:
  table - Human-readable table format (default)
  json  - The same JSON array GET /messages returns`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unknown format %q (want table or json)", format)
			}
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

			entries := a.Log.ReadAll(cmd.Context())
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			renderTable(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 0, "print at most this many messages (0 prints all)")
	listCmd.Flags().StringVar(&format, "format", "table", "output format (table, json)")
	return listCmd
}

func renderTable(w io.Writer, entries []domain.Entry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Author", "Content", "Created"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(lo.Map(entries, func(e domain.Entry, _ int) []string {
		return []string{
			strconv.FormatUint(e.ID, 10),
			e.Author,
			e.Content,
			e.CreatedAt.Format(time.RFC3339),
		}
	}))
	table.Render()
}
