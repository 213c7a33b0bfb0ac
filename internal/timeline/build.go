// Package timeline lays a decomposition out on a business-day calendar.
//
// Epics are placed back to back from the start date, and each epic's
// stories are placed back to back from the epic's own start. An epic's
// length comes from its effective hours, not from the span of its stories,
// so the two can disagree when the epic carries its own estimate.
package timeline

import (
	"fmt"
	"time"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// Kind tags a task for the chart renderer.
type Kind string

const (
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Task is one bar on the chart.
type Task struct {
	ID       string
	Name     string
	Start    time.Time
	End      time.Time
	Kind     Kind
	Progress float64
	Hours    float64
	Days     int

	// Dependency names the parent bar. Display only; it is not a constraint.
	Dependency string
}

// Timeline holds the three chart granularities.
type Timeline struct {
	Project []Task
	Epics   []Task
	Stories []Task
}

// ProjectID returns the project task ID for a run.
func ProjectID(runID string) string {
	return "RUN-" + runID
}

// Build derives the chart from a decomposition starting at start. It is a
// pure function of its inputs and never fails.
func Build(runID string, d domain.Decomposition, start time.Time) Timeline {
	projectHours := d.ProjectHours()
	project := newTask(ProjectID(runID), "Project Timeline", projectHours, start, KindProject, "")

	tl := Timeline{
		Project: []Task{project},
		Epics:   make([]Task, 0, len(d.Epics)),
	}

	cursor := start
	for i, epic := range d.Epics {
		epicID := domain.EpicKey(epic, i)
		epicTask := newTask(epicID, epic.Title, epic.EffectiveHours(), cursor, KindTask, project.ID)
		tl.Epics = append(tl.Epics, epicTask)

		storyCursor := epicTask.Start
		for j, story := range epic.Stories {
			storyTask := newTask(domain.StoryKey(epicID, story, j), story.Title, story.Estimate.Or(0), storyCursor, KindTask, epicID)
			tl.Stories = append(tl.Stories, storyTask)
			storyCursor = storyTask.End
		}

		cursor = epicTask.End
	}

	return tl
}

// StartOrNow returns start, or the current time when start is zero.
func StartOrNow(start time.Time) time.Time {
	if start.IsZero() {
		return time.Now()
	}
	return start
}

func newTask(id, title string, hours float64, start time.Time, kind Kind, dep string) Task {
	days := HoursToBusinessDays(hours)
	return Task{
		ID:         id,
		Name:       fmt.Sprintf("%s (%sh)", title, domain.FormatHours(hours)),
		Start:      start,
		End:        addBusinessDays(start, days),
		Kind:       kind,
		Dependency: dep,
		Hours:      hours,
		Days:       days,
	}
}

// Span returns the earliest start and latest end across all tasks.
func (tl Timeline) Span() (time.Time, time.Time) {
	var first, last time.Time
	for _, group := range [][]Task{tl.Project, tl.Epics, tl.Stories} {
		for _, t := range group {
			if first.IsZero() || t.Start.Before(first) {
				first = t.Start
			}
			if t.End.After(last) {
				last = t.End
			}
		}
	}
	return first, last
}
