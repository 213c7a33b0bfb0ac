package cli

import (
	"fmt"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/spf13/cobra"
)

func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "runs",
		Aliases: []string{"run"},
		Short:   "List and manage processing runs",
	}

	list := newRunsListCmd(app)
	cmd.RunE = list.RunE
	cmd.Flags().AddFlagSet(list.Flags())

	cmd.AddCommand(
		list,
		newRunsShowCmd(app),
		newRunsSelectCmd(app),
		newRunsForgetCmd(app),
		newRunsClearCmd(app),
	)
	return cmd
}

func newRunsListCmd(app *App) *cobra.Command {
	var limit int
	var offline bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent runs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var runs []domain.Run
			if offline {
				runs = app.Runs.Cached()
			} else {
				var err error
				runs, err = app.Runs.Refresh(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRunList(runs, selectedID(app), app.now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to fetch")
	cmd.Flags().BoolVar(&offline, "offline", false, "Show the cached list without contacting the backend")

	return cmd
}

func newRunsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [run]",
		Short: "Show a run and its processing steps",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := resolveRun(cmd.Context(), app, args)
			if err != nil {
				return err
			}
			fresh, err := app.Runs.Show(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRun(fresh, fresh.ID == selectedID(app)))
			return nil
		},
	}
}

func newRunsSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select <run>",
		Short: "Make a run the default for other commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := resolveRun(cmd.Context(), app, args)
			if err != nil {
				return err
			}
			selected, err := app.Runs.Select(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected run %s (%s)\n",
				formatter.Bold(selected.DisplayID()), selected.FileName)
			return nil
		},
	}
}

func newRunsForgetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <run>",
		Short: "Drop a run and its cached decomposition from the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := app.Runs.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := app.Runs.Forget(cmd.Context(), run.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot run %s\n", run.DisplayID())
			return nil
		},
	}
}

func newRunsClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cached run list and selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Runs.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared cached runs")
			return nil
		},
	}
}

func selectedID(app *App) string {
	if sel := app.Runs.Selected(); sel != nil {
		return sel.ID
	}
	return ""
}
