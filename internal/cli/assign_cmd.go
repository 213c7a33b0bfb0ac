package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newAssignCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assign",
		Aliases: []string{"assignments"},
		Short:   "Suggest, review and edit task assignees",
	}

	cmd.AddCommand(
		newAssignSuggestCmd(app),
		newAssignShowCmd(app),
		newAssignEditCmd(app),
	)
	return cmd
}

func newAssignSuggestCmd(app *App) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "suggest [run]",
		Short: "Ask the backend to suggest an assignee for every task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			run, err := resolveRun(ctx, app, args)
			if err != nil {
				return err
			}

			stop := formatter.StartSpinner(spinnerWriter(app, cmd), "Suggesting assignees")
			suggestions, err := app.Assignments.Suggest(ctx, run.ID)
			stop()
			if err != nil {
				return err
			}

			tasks, users, err := tasksAndUsers(ctx, app, run.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatSuggestions(tasks, suggestions, users))

			if !save {
				fmt.Fprintln(out, formatter.Dim("Review with 'reqplan assign edit', or rerun with --save to keep these."))
				return nil
			}
			fa, err := app.Assignments.Save(ctx, run.ID, suggestions)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Saved %d assignments\n", formatter.Success("✔"), len(fa.Flatten()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the suggestions as final assignments")

	return cmd
}

func newAssignShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [run]",
		Short: "Show saved assignments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			run, err := resolveRun(ctx, app, args)
			if err != nil {
				return err
			}
			fa, err := app.Assignments.Final(ctx, run.ID)
			if errors.Is(err, service.ErrNoAssignments) {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No assignments saved yet. Run 'reqplan assign suggest' or 'reqplan assign edit'."))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatFinalAssignments(fa))
			return nil
		},
	}
}

func newAssignEditCmd(app *App) *cobra.Command {
	var sets map[string]string

	cmd := &cobra.Command{
		Use:   "edit [run]",
		Short: "Edit assignees and save them as final",
		Long: `Start from the saved assignments, or the stored suggestions when none
are saved, and change assignees. In a terminal a form is shown. Otherwise
pass --set task-id=account-id; an empty account unassigns the task.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			run, err := resolveRun(ctx, app, args)
			if err != nil {
				return err
			}
			tasks, users, err := tasksAndUsers(ctx, app, run.ID)
			if err != nil {
				return err
			}
			current, err := currentAssignments(ctx, app, run.ID)
			if err != nil {
				return err
			}

			switch {
			case len(sets) > 0:
				if err := applySets(current, sets, tasks, users); err != nil {
					return err
				}
			case app.interactive():
				values := make(map[string]*string, len(tasks))
				for _, t := range tasks {
					v := current[t.ID]
					values[t.ID] = &v
				}
				if err := assignmentForm(tasks, users, values).RunWithContext(ctx); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(out, "Nothing saved.")
						return nil
					}
					return err
				}
				for id, v := range values {
					current[id] = *v
				}
			default:
				return errors.New("not a terminal: pass --set task-id=account-id")
			}

			fa, err := app.Assignments.Save(ctx, run.ID, current)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatFinalAssignments(fa))
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&sets, "set", nil, "Assign a task, as task-id=account-id (repeatable)")

	return cmd
}

func tasksAndUsers(ctx context.Context, app *App, runID string) ([]domain.AssignmentTask, []domain.User, error) {
	tasks, err := app.Assignments.Tasks(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	users, err := app.Assignments.Users(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return tasks, users, nil
}

// currentAssignments returns the saved assignments, or the stored
// suggestions when nothing was saved yet.
func currentAssignments(ctx context.Context, app *App, runID string) (domain.Assignments, error) {
	fa, err := app.Assignments.Final(ctx, runID)
	if err == nil {
		return fa.Flatten(), nil
	}
	if !errors.Is(err, service.ErrNoAssignments) {
		return nil, err
	}
	saved, err := app.Assignments.Saved(ctx, runID)
	if err != nil {
		return nil, err
	}
	out := make(domain.Assignments, len(saved))
	for id, acc := range saved {
		out[id] = acc
	}
	return out, nil
}

// applySets validates task-id=account-id pairs against the run's tasks and
// the known users, then applies them.
func applySets(current domain.Assignments, sets map[string]string, tasks []domain.AssignmentTask, users []domain.User) error {
	var unknown []string
	for id, acc := range sets {
		if !slices.ContainsFunc(tasks, func(t domain.AssignmentTask) bool { return t.ID == id }) {
			unknown = append(unknown, "task "+id)
			continue
		}
		if acc != "" {
			if _, ok := domain.FindUser(users, acc); !ok {
				unknown = append(unknown, "user "+acc)
			}
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("unknown %s", strings.Join(unknown, ", "))
	}
	for id, acc := range sets {
		current[id] = acc
	}
	return nil
}
