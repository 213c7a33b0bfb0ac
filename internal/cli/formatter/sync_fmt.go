package formatter

import (
	"slices"
	"strings"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// FormatSyncResult lists every assigned item with its ticket status. Items
// the backend did not report show as not synced.
func FormatSyncResult(fa domain.FinalAssignments, result domain.SyncResult) string {
	var rows [][]string
	add := func(indent string, it domain.AssignedItem) {
		if it.ID == "" {
			return
		}
		rows = append(rows, []string{
			StyleDim.Render(it.ID),
			indent + Truncate(it.Title, 40),
			domain.CoalesceStr(it.AssigneeName, it.Assignee, "unassigned"),
			SyncIndicator(result.StatusOf(it.ID)),
		})
	}
	for _, e := range fa.Epics {
		add("", e.AssignedItem)
		for _, s := range e.Stories {
			add("  ", s.AssignedItem)
			for _, st := range s.Subtasks {
				add("    ", st)
			}
		}
	}

	// Without the assignment tree, fall back to the raw result.
	if len(rows) == 0 {
		for id, s := range result.SyncStatus {
			rows = append(rows, []string{StyleDim.Render(id), "", "", SyncIndicator(s)})
		}
		slices.SortFunc(rows, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	}
	if len(rows) == 0 {
		return Dim("Nothing synced yet.") + "\n"
	}
	return RenderTable([]string{"ID", "TASK", "ASSIGNEE", "STATUS"}, rows)
}

// SyncMessage renders the outcome line, green when nothing failed.
func SyncMessage(msg string, failed int) string {
	if failed == 0 {
		return Success(msg)
	}
	return Warn(msg)
}
