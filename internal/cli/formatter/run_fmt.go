package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/reqplan/internal/domain"
)

const fileNameWidth = 36

// FormatRunList renders cached runs, newest first, marking the selected one.
func FormatRunList(runs []domain.Run, selectedID string, now time.Time) string {
	if len(runs) == 0 {
		return Dim("No runs yet. Upload a document with `reqplan upload <file>`.") + "\n"
	}

	headers := []string{"", "ID", "FILE", "STATUS", "PIPELINE", "SIZE", "CREATED"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		marker := " "
		if r.ID == selectedID {
			marker = StylePurple.Render("*")
		}
		rows = append(rows, []string{
			marker,
			StyleDim.Render(r.DisplayID()),
			Bold(Truncate(r.FileName, fileNameWidth)),
			RunStatusPill(r.Status),
			StepPipeline(r.Steps),
			FileSize(r.FileSize),
			RelativeTime(r.CreatedAt, now),
		})
	}
	return RenderTable(headers, rows)
}

// StepPipeline renders the five steps as icons in processing order.
func StepPipeline(steps domain.RunSteps) string {
	icons := make([]string, 0, len(domain.StepOrder))
	for _, name := range domain.StepOrder {
		icons = append(icons, StepIcon(steps.Get(name).Status))
	}
	return strings.Join(icons, " ")
}

// FormatRun renders one run with every step's status and timestamp.
func FormatRun(r domain.Run, selected bool) string {
	var b strings.Builder

	title := r.FileName
	if selected {
		title += "  " + StylePurple.Render("(selected)")
	}
	b.WriteString(Header("Run " + r.DisplayID()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", Dim("File:   "), Bold(title))
	fmt.Fprintf(&b, "%s %s\n", Dim("ID:     "), r.ID)
	fmt.Fprintf(&b, "%s %s\n", Dim("Status: "), RunStatusPill(r.Status))
	fmt.Fprintf(&b, "%s %s\n", Dim("Size:   "), FileSize(r.FileSize))
	fmt.Fprintf(&b, "%s %s\n\n", Dim("Created:"), Timestamp(&r.CreatedAt))

	rows := make([][]string, 0, len(domain.StepOrder))
	for _, name := range domain.StepOrder {
		step := r.Steps.Get(name)
		status := step.Status
		if status == "" {
			status = domain.StepPending
		}
		rows = append(rows, []string{
			StepIcon(status),
			stepLabel(name),
			StepStyle(status).Render(string(status)),
			Timestamp(step.Timestamp),
		})
	}
	b.WriteString(RenderTable([]string{"", "STEP", "STATUS", "AT"}, rows))
	return b.String()
}

func stepLabel(name domain.StepName) string {
	switch name {
	case domain.StepJiraSync:
		return "Jira sync"
	default:
		s := string(name)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}
