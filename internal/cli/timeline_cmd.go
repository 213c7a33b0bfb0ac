package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

const startDateLayout = "2006-01-02"

func newTimelineCmd(app *App) *cobra.Command {
	var (
		start    string
		file     string
		server   bool
		teamSize int
		width    int
	)

	cmd := &cobra.Command{
		Use:     "timeline [run]",
		Aliases: []string{"gantt"},
		Short:   "Lay a decomposition out on a business-day timeline",
		Long: `Schedule the decomposition's epics and stories on business days,
eight hours per day, skipping weekends. Epics run one after another, as do
the stories inside each epic.

--file reads a decomposition JSON file instead of a run. --server asks the
backend to generate its own chart for a team size and prints it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			startAt, err := parseStartDate(start)
			if err != nil {
				return err
			}

			if file != "" {
				if len(args) > 0 || server {
					return errors.New("--file cannot be combined with a run or --server")
				}
				tl, err := app.Timelines.FromFile(file, startAt)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatTimeline(tl, width))
				return nil
			}

			run, err := resolveRun(ctx, app, args)
			if err != nil {
				return err
			}

			if server {
				req := backend.GanttRequest{TeamSize: teamSize}
				if start != "" {
					req.StartDate = startAt.Format(startDateLayout)
				}
				chart, err := app.Timelines.Generate(ctx, run.ID, req)
				if err != nil {
					return err
				}
				return writeJSON(out, chart)
			}

			tl, err := app.Timelines.ForRun(ctx, run.ID, startAt)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatTimeline(tl, width))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the decomposition from a JSON file")
	cmd.Flags().BoolVar(&server, "server", false, "Generate the chart on the backend")
	cmd.Flags().IntVar(&teamSize, "team-size", 1, "Team size for --server")
	cmd.Flags().IntVar(&width, "width", 40, "Bar area width in cells")

	return cmd
}

// parseStartDate reads a local calendar date. Empty yields the zero time,
// which the timeline treats as today.
func parseStartDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(startDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
