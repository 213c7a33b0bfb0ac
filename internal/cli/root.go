package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds the services the commands run against.
type App struct {
	Runs           service.RunService
	Uploads        service.UploadService
	Summaries      service.SummaryService
	Decompositions service.DecompositionService
	Timelines      service.TimelineService
	Assignments    service.AssignmentService
	Sync           service.SyncService

	// Backend, when set, is checked for reachability before commands that
	// start long backend work.
	Backend HealthChecker

	Logger *slog.Logger

	// Setup, when set, runs before every command with the parsed global
	// flags so config can be loaded and services wired.
	Setup func(cmd *cobra.Command, flags *pflag.FlagSet) error

	// IsInteractive reports whether stdout is a terminal. Nil means no.
	IsInteractive func() bool

	// MarkdownStyle is the glamour style for summaries.
	MarkdownStyle string

	Now func() time.Time
}

// HealthChecker reports whether the backend answers at all.
type HealthChecker interface {
	Available(ctx context.Context) bool
	BaseURL() string
}

func (a *App) requireBackend(ctx context.Context) error {
	if a.Backend == nil || a.Backend.Available(ctx) {
		return nil
	}
	return fmt.Errorf("%w at %s", backend.ErrUnavailable, a.Backend.BaseURL())
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "reqplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "reqplan",
		Short: "Turn requirements documents into planned, assigned tickets",
		Long: `reqplan uploads a requirements document to the planning backend, shows
the generated summary and work breakdown, lays the breakdown out on a
business-day timeline, and assigns and syncs the resulting tickets.

Commands that take [run] accept a full run id or a unique prefix. Without
one they use the selected run (see 'reqplan runs select').`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.Setup == nil {
				return nil
			}
			return app.Setup(cmd, cmd.Root().PersistentFlags())
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default $XDG_CONFIG_HOME/reqplan/config.yaml)")
	flags.String("api-url", "", "backend base URL")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("db", "", "path to the local cache database")

	root.AddCommand(
		newUploadCmd(app),
		newRunsCmd(app),
		newSummaryCmd(app),
		newDecomposeCmd(app),
		newTreeCmd(app),
		newTimelineCmd(app),
		newUsersCmd(app),
		newAssignCmd(app),
		newSyncCmd(app),
	)

	return root
}
