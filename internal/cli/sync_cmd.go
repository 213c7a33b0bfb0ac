package cli

import (
	"fmt"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/alexanderramin/reqplan/internal/service"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "sync [run]",
		Short: "Create tracker tickets from the saved assignments",
		Long: `Send the run's final assignments to the backend, which creates one
ticket per task. --status shows the last sync outcome without syncing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			run, err := resolveRun(ctx, app, args)
			if err != nil {
				return err
			}

			var report *service.SyncReport
			if status {
				report, err = app.Sync.Status(ctx, run.ID)
			} else {
				stop := formatter.StartSpinner(spinnerWriter(app, cmd), "Creating tickets")
				report, err = app.Sync.Sync(ctx, run.ID)
				stop()
			}
			if err != nil {
				return err
			}

			fmt.Fprint(out, formatter.FormatSyncResult(report.Assignments, report.Result))
			if len(report.Result.SyncStatus) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.SyncMessage(report.Message(), report.Failed))
			}
			if !status && report.Failed > 0 {
				return fmt.Errorf("%d tickets failed to sync", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show the last sync result without syncing")

	return cmd
}
