package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var refresh, raw bool

	cmd := &cobra.Command{
		Use:   "tree [run]",
		Short: "Show a run's epics, stories and subtasks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			run, err := resolveRun(ctx, app, args)
			if err != nil {
				return err
			}

			if raw {
				body, err := app.Decompositions.LoadRaw(ctx, run.ID, refresh)
				if err != nil {
					return err
				}
				return writeJSON(out, body)
			}

			loaded, err := app.Decompositions.Load(ctx, run.ID, refresh)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatDecomposition(loaded.Decomposition, loaded.Problems))
			if loaded.FromCache {
				fmt.Fprintln(out, formatter.Dim("cached "+formatter.RelativeTime(loaded.FetchedAt.UTC().Format(time.RFC3339), app.now())+"; --refresh to refetch"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch from the backend even when cached")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the decomposition JSON as stored")

	return cmd
}

// writeJSON pretty-prints body, or writes it unchanged when it is not JSON.
func writeJSON(w io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		buf.Reset()
		buf.Write(body)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
