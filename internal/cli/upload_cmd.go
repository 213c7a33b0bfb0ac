package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/service"
	"github.com/spf13/cobra"
)

func newUploadCmd(app *App) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a requirements document and start a run",
		Long: `Upload a PDF or Word document. The new run is cached and selected.
With --wait the command polls until the summary is ready and prints it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if err := app.requireBackend(ctx); err != nil {
				return err
			}
			stop := formatter.StartSpinner(spinnerWriter(app, cmd), "Uploading "+args[0])
			run, err := app.Uploads.Upload(ctx, args[0])
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Uploaded %s as run %s\n",
				formatter.Success("✔"), run.FileName, formatter.Bold(run.ID))

			if !wait {
				fmt.Fprintln(out, formatter.Dim("Run 'reqplan summary' once the summary step completes."))
				return nil
			}

			setMessage, stopSpin := startStatus(spinnerWriter(app, cmd), "Generating summary")
			run, err = app.Uploads.WaitForSummary(ctx, run.ID, func(attempt int, r domain.Run, pollErr error) {
				if pollErr != nil {
					setMessage(fmt.Sprintf("Generating summary (attempt %d, retrying)", attempt))
					return
				}
				setMessage(fmt.Sprintf("Generating summary (attempt %d, %s)", attempt, r.Steps.Summary.Status))
			})
			stopSpin()
			if err != nil {
				if errors.Is(err, service.ErrPollExhausted) {
					fmt.Fprintln(out, formatter.Warn("Summary still in progress; check back with 'reqplan summary'."))
					return nil
				}
				return err
			}

			sum, err := app.Summaries.Get(ctx, run.ID, false)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatSummary(sum, app.MarkdownStyle, markdownWidth))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the summary and print it")

	return cmd
}

const markdownWidth = 80

// spinnerWriter returns stderr for interactive sessions and nil otherwise,
// which turns spinners off.
func spinnerWriter(app *App, cmd *cobra.Command) io.Writer {
	if !app.interactive() {
		return nil
	}
	return cmd.ErrOrStderr()
}

// startStatus starts a spinner whose message can change while it runs.
func startStatus(w io.Writer, message string) (setMessage func(string), stop func()) {
	if w == nil {
		return func(string) {}, func() {}
	}
	s := formatter.NewSpinner(w, message)
	s.Start()
	return s.SetMessage, s.Stop
}
