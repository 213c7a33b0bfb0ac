package cli

import (
	"fmt"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// reqplanHuhTheme styles huh forms with the formatter palette.
func reqplanHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// assigneeOptions lists users by display name, with an unassigned entry
// first.
func assigneeOptions(users []domain.User) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(users)+1)
	options = append(options, huh.NewOption("Unassigned", ""))
	for _, u := range users {
		label := domain.CoalesceStr(u.DisplayName, u.AccountID)
		if u.Role != "" {
			label = fmt.Sprintf("%s (%s)", label, u.Role)
		}
		options = append(options, huh.NewOption(label, u.AccountID))
	}
	return options
}

// assignmentGroups splits tasks into one page per epic. Each epic is
// followed by its stories and subtasks in the task list.
func assignmentGroups(tasks []domain.AssignmentTask) [][]domain.AssignmentTask {
	var groups [][]domain.AssignmentTask
	for _, t := range tasks {
		if t.TaskType == domain.TaskEpic || len(groups) == 0 {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], t)
	}
	return groups
}

// assignmentForm builds a select per task. values holds the current
// assignee for every task ID and receives the choices.
func assignmentForm(tasks []domain.AssignmentTask, users []domain.User, values map[string]*string) *huh.Form {
	options := assigneeOptions(users)

	var groups []*huh.Group
	for _, page := range assignmentGroups(tasks) {
		fields := make([]huh.Field, 0, len(page))
		for _, t := range page {
			v, ok := values[t.ID]
			if !ok {
				v = new(string)
				values[t.ID] = v
			}
			fields = append(fields, huh.NewSelect[string]().
				Title(taskFieldTitle(t)).
				Description(t.Team).
				Options(options...).
				Value(v))
		}
		groups = append(groups, huh.NewGroup(fields...))
	}

	return huh.NewForm(groups...).WithTheme(reqplanHuhTheme()).WithShowHelp(true)
}

func taskFieldTitle(t domain.AssignmentTask) string {
	switch t.TaskType {
	case domain.TaskEpic:
		return "Epic: " + t.Title
	case domain.TaskSubtask:
		return "    " + t.Title
	default:
		return "  " + t.Title
	}
}
