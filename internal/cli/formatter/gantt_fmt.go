package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/reqplan/internal/timeline"
)

const (
	ganttNameWidth = 32
	dateLayout     = "Jan 02"
)

// FormatTimeline draws the project, epic and story bars on one shared
// calendar scale. chartWidth is the bar area in cells.
func FormatTimeline(tl timeline.Timeline, chartWidth int) string {
	first, last := tl.Span()
	if first.IsZero() {
		return Dim("Nothing to schedule.") + "\n"
	}
	chartWidth = max(chartWidth, 10)
	totalDays := calendarDays(first, last)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s → %s\n\n", Header("Timeline"), first.Format("Mon Jan 02 2006"), last.Format("Mon Jan 02 2006"))

	groups := []struct {
		title string
		tasks []timeline.Task
		style func(...string) string
	}{
		{"Project", tl.Project, StyleHeader.Render},
		{"Epics", tl.Epics, StylePurple.Render},
		{"Stories", tl.Stories, StyleBlue.Render},
	}
	for _, g := range groups {
		if len(g.tasks) == 0 {
			continue
		}
		b.WriteString(Bold(g.title) + "\n")
		rows := make([][]string, 0, len(g.tasks))
		for _, t := range g.tasks {
			rows = append(rows, []string{
				StyleDim.Render(t.ID),
				Truncate(t.Name, ganttNameWidth),
				t.Start.Format(dateLayout),
				t.End.Format(dateLayout),
				fmt.Sprintf("%dd", t.Days),
				g.style(GanttBar(first, totalDays, t, chartWidth)),
			})
		}
		b.WriteString(RenderTable([]string{"ID", "TASK", "START", "END", "DAYS", "BAR"}, rows))
		b.WriteString("\n")
	}
	return b.String()
}

// GanttBar places a task on a bar of width cells covering totalDays
// calendar days from origin. Every task gets at least one cell.
func GanttBar(origin time.Time, totalDays int, t timeline.Task, width int) string {
	if totalDays <= 0 {
		totalDays = 1
	}
	scale := float64(width) / float64(totalDays)
	offset := int(math.Floor(float64(calendarDays(origin, t.Start)) * scale))
	length := int(math.Ceil(float64(calendarDays(t.Start, t.End)) * scale))
	offset = min(max(offset, 0), width-1)
	length = min(max(length, 1), width-offset)
	return strings.Repeat(" ", offset) + strings.Repeat(filledBlock, length) + strings.Repeat(" ", width-offset-length)
}

func calendarDays(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
