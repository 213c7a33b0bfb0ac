package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/alexanderramin/reqplan/internal/progress"
	"github.com/alexanderramin/reqplan/internal/service"
	"github.com/spf13/cobra"
)

func newDecomposeCmd(app *App) *cobra.Command {
	var enhanced, trigger bool

	cmd := &cobra.Command{
		Use:   "decompose [run]",
		Short: "Break a run's requirements into epics, stories and subtasks",
		Long: `Run the AI decomposition for a run and follow its progress.

By default the streaming endpoint is used and progress is shown as it
arrives. --enhanced uses the enhanced pipeline. --trigger starts the
decomposition without streaming and prints the result once ready.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enhanced && trigger {
				return errors.New("--enhanced and --trigger cannot be combined")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			run, err := resolveRun(ctx, app, args)
			if err != nil {
				return err
			}
			if err := app.requireBackend(ctx); err != nil {
				return err
			}

			if trigger {
				stop := formatter.StartSpinner(spinnerWriter(app, cmd), "Decomposing "+run.DisplayID())
				loaded, err := app.Decompositions.Trigger(ctx, run.ID)
				stop()
				if err != nil {
					return fmt.Errorf("decomposition failed: %w", err)
				}
				fmt.Fprint(out, formatter.FormatDecomposition(loaded.Decomposition, loaded.Problems))
				return nil
			}

			mode := service.StreamDefault
			if enhanced {
				mode = service.StreamEnhanced
			}

			var state progress.State
			if app.interactive() {
				state, err = runDecomposeView(ctx, app, run.ID, mode, out)
			} else {
				state, err = streamPlain(cmd, app, run.ID, mode, out)
			}
			if err != nil {
				switch {
				case errors.Is(err, errStreamCancelled):
					return fmt.Errorf("decomposition %w", err)
				case errors.Is(err, backend.ErrStreamFailed):
					return err
				}
				return fmt.Errorf("decomposition failed: %w", err)
			}

			for _, w := range state.Warnings {
				fmt.Fprintln(out, formatter.Warn("warning: "+w))
			}
			fmt.Fprintln(out, formatter.Dim("Run 'reqplan tree' to see the breakdown."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&enhanced, "enhanced", false, "Use the enhanced decomposition pipeline")
	cmd.Flags().BoolVar(&trigger, "trigger", false, "Start decomposition without streaming progress")

	cmd.AddCommand(newValidateCmd(app))

	return cmd
}

// streamPlain prints one line per progress event. The error event is left
// to the caller, which reports it through the returned error.
func streamPlain(cmd *cobra.Command, app *App, runID string, mode service.StreamMode, out io.Writer) (progress.State, error) {
	var last *progress.Event
	return app.Decompositions.Stream(cmd.Context(), runID, mode, func(s progress.State) {
		if s.Last == nil || s.Last == last {
			return
		}
		last = s.Last
		if s.Last.Type == progress.EventError {
			return
		}
		fmt.Fprintln(out, formatter.FormatStreamEvent(*s.Last))
	})
}

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [run]",
		Short: "Check a run's decomposition on the backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := resolveRun(cmd.Context(), app, args)
			if err != nil {
				return err
			}
			report, err := app.Decompositions.Validate(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatValidation(report))
			if !report.IsValid {
				return fmt.Errorf("decomposition has %d errors", len(report.Errors))
			}
			return nil
		},
	}
}
