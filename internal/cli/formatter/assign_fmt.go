package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// FormatUsers renders assignable accounts.
func FormatUsers(users []domain.User) string {
	if len(users) == 0 {
		return Dim("No assignable users.") + "\n"
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			Bold(u.DisplayName),
			StyleDim.Render(u.AccountID),
			u.EmailAddress,
			u.Role,
		})
	}
	return RenderTable([]string{"NAME", "ACCOUNT", "EMAIL", "ROLE"}, rows)
}

// AssigneeLabel is the display name for an account, the raw id when the
// account is unknown, or "unassigned".
func AssigneeLabel(users []domain.User, accountID string) string {
	if accountID == "" {
		return Dim("unassigned")
	}
	if u, ok := domain.FindUser(users, accountID); ok && u.DisplayName != "" {
		return u.DisplayName
	}
	return accountID
}

// FormatSuggestions lists every task with its suggested assignee.
func FormatSuggestions(tasks []domain.AssignmentTask, assignments domain.Assignments, users []domain.User) string {
	if len(tasks) == 0 {
		return Dim("No tasks to assign.") + "\n"
	}
	rows := make([][]string, 0, len(tasks))
	assigned := 0
	for _, t := range tasks {
		acc := assignments[t.ID]
		if acc != "" {
			assigned++
		}
		rows = append(rows, []string{
			StyleDim.Render(t.ID),
			taskTitle(t),
			string(t.TaskType),
			t.Team,
			AssigneeLabel(users, acc),
		})
	}
	var b strings.Builder
	b.WriteString(RenderTable([]string{"ID", "TASK", "TYPE", "TEAM", "ASSIGNEE"}, rows))
	fmt.Fprintf(&b, "\n%s\n", Dim(fmt.Sprintf("%d of %d tasks assigned", assigned, len(tasks))))
	return b.String()
}

func taskTitle(t domain.AssignmentTask) string {
	switch t.TaskType {
	case domain.TaskEpic:
		return Bold(Truncate(t.Title, 40))
	case domain.TaskSubtask:
		return "    " + Truncate(t.Title, 36)
	default:
		return "  " + Truncate(t.Title, 38)
	}
}

// FormatFinalAssignments renders the saved assignment tree.
func FormatFinalAssignments(fa domain.FinalAssignments) string {
	var items []TreeItem
	label := func(it domain.AssignedItem) string {
		if it.Assignee == "" {
			return "unassigned"
		}
		return domain.CoalesceStr(it.AssigneeName, it.Assignee)
	}
	for i, e := range fa.Epics {
		lastEpic := i == len(fa.Epics)-1
		items = append(items, TreeItem{Key: e.ID, Title: Bold(e.Title), Level: 1, IsLast: lastEpic, Detail: label(e.AssignedItem)})
		for j, s := range e.Stories {
			lastStory := j == len(e.Stories)-1
			items = append(items, TreeItem{Key: s.ID, Title: s.Title, Level: 2, IsLast: lastStory, Ancestors: []bool{lastEpic}, Detail: label(s.AssignedItem)})
			for k, st := range s.Subtasks {
				items = append(items, TreeItem{
					Key: st.ID, Title: Dim(st.Title), Level: 3, IsLast: k == len(s.Subtasks)-1,
					Ancestors: []bool{lastEpic, lastStory}, Detail: label(st),
				})
			}
		}
	}

	var b strings.Builder
	b.WriteString(Header("Assignments"))
	b.WriteString("\n")
	if fa.SavedAt != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Saved:"), Timestamp(&fa.SavedAt))
	}
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(Dim("Nothing assigned yet.") + "\n")
		return b.String()
	}
	b.WriteString(RenderTree(items))
	return b.String()
}
