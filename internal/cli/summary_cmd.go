package cli

import (
	"fmt"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSummaryCmd(app *App) *cobra.Command {
	var refresh bool
	var width int

	cmd := &cobra.Command{
		Use:   "summary [run]",
		Short: "Show the document summary for a run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := resolveRun(cmd.Context(), app, args)
			if err != nil {
				return err
			}
			sum, err := app.Summaries.Get(cmd.Context(), run.ID, refresh)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(sum, app.MarkdownStyle, width))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch from the backend even when cached")
	cmd.Flags().IntVar(&width, "width", markdownWidth, "Wrap width")

	return cmd
}
