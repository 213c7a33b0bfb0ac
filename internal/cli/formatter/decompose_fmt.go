package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/progress"
)

// DecompositionTree flattens the hierarchy into tree lines with each
// item's hours (and priority for epics and stories).
func DecompositionTree(d domain.Decomposition) []TreeItem {
	var items []TreeItem
	for i, e := range d.Epics {
		epicKey := domain.EpicKey(e, i)
		lastEpic := i == len(d.Epics)-1
		items = append(items, TreeItem{
			Key:    epicKey,
			Title:  Bold(e.Title),
			Level:  1,
			IsLast: lastEpic,
			Status: e.Status,
			Detail: itemDetail(e.EffectiveHours(), e.Priority),
		})
		for j, s := range e.Stories {
			storyKey := domain.StoryKey(epicKey, s, j)
			lastStory := j == len(e.Stories)-1
			items = append(items, TreeItem{
				Key:       storyKey,
				Title:     s.Title,
				Level:     2,
				IsLast:    lastStory,
				Ancestors: []bool{lastEpic},
				Status:    s.Status,
				Detail:    itemDetail(s.Estimate.Or(0), s.Priority),
			})
			for k, st := range s.Subtasks {
				items = append(items, TreeItem{
					Key:       domain.SubtaskKey(storyKey, st, k),
					Title:     Dim(st.Title),
					Level:     3,
					IsLast:    k == len(s.Subtasks)-1,
					Ancestors: []bool{lastEpic, lastStory},
					Status:    st.Status,
					Detail:    domain.FormatHours(st.Estimate.Or(0)) + "h",
				})
			}
		}
	}
	return items
}

func itemDetail(hours float64, p domain.Priority) string {
	d := domain.FormatHours(hours) + "h"
	if p != "" {
		d += " · " + string(p)
	}
	return d
}

// FormatDecomposition renders the totals line, the tree, backend warnings
// and local problems found in the payload.
func FormatDecomposition(d domain.Decomposition, problems []error) string {
	var b strings.Builder
	epics, stories, subtasks := d.Counts()

	b.WriteString(Header("Decomposition"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d epics · %d stories · %d subtasks · %sh total",
		epics, stories, subtasks, domain.FormatHours(d.ProjectHours()))
	if d.TimelineWeeks > 0 {
		fmt.Fprintf(&b, " · ~%d weeks", d.TimelineWeeks)
	}
	b.WriteString("\n\n")

	if epics == 0 {
		b.WriteString(Dim("No epics in this decomposition.") + "\n")
	} else {
		b.WriteString(RenderTree(DecompositionTree(d)))
	}

	if len(d.Warnings) > 0 {
		b.WriteString("\n" + Bold("Warnings") + "\n")
		for _, w := range d.Warnings {
			b.WriteString(Warn(w) + "\n")
		}
	}
	if len(problems) > 0 {
		b.WriteString("\n" + Bold("Problems") + "\n")
		for _, p := range problems {
			b.WriteString(Warn(p.Error()) + "\n")
		}
	}
	return b.String()
}

// FormatValidation renders the backend's validation report.
func FormatValidation(r backend.ValidationReport) string {
	var b strings.Builder
	st := r.Statistics
	if r.IsValid {
		b.WriteString(Success(fmt.Sprintf("Decomposition is valid (%d epics, %d stories, %d subtasks)",
			st.EpicsCount, st.StoriesCount, st.SubtasksCount)))
	} else {
		b.WriteString(Failure("Decomposition validation failed: " + strings.Join(r.Errors, ", ")))
	}
	b.WriteString("\n")
	for _, w := range r.Warnings {
		b.WriteString(Warn(w) + "\n")
	}
	return b.String()
}

// FormatStreamEvent is the plain one-line rendering of a progress event,
// used when output is not a terminal.
func FormatStreamEvent(e progress.Event) string {
	switch e.Type {
	case progress.EventComplete:
		return Success(completionText(e))
	case progress.EventError:
		return Failure("Decomposition failed: " + e.Describe())
	default:
		msg := e.Describe()
		if msg == "" {
			msg = string(e.Type)
		}
		return Dim("· ") + msg
	}
}

func completionText(e progress.Event) string {
	if e.Message != "" {
		return e.Message
	}
	r := backend.DecomposeResult{EpicsCount: domain.IntFromPtrWithDefault(0, e.EpicsCount)}
	if e.TotalHours != nil {
		r.TotalHours = *e.TotalHours
	}
	if e.WasRepaired != nil {
		r.WasRepaired = *e.WasRepaired
	}
	return backend.CompletionMessage(r)
}

// FormatStreamState renders the accumulated state: chunk progress while in
// flight, the outcome once finished.
func FormatStreamState(s progress.State) string {
	var b strings.Builder
	switch {
	case s.Err != "":
		b.WriteString(Failure("Decomposition failed: " + s.Err))
	case s.Done():
		b.WriteString(Success(backend.CompletionMessage(backend.DecomposeResult{
			EpicsCount:  s.EpicsCount,
			TotalHours:  s.TotalHours,
			WasRepaired: s.WasRepaired,
		})))
	default:
		msg := "Starting decomposition..."
		if s.Last != nil {
			if d := s.Last.Describe(); d != "" {
				msg = d
			}
		}
		b.WriteString(msg)
		if s.TotalChunks > 0 {
			b.WriteString("  " + RenderProgress(float64(s.CurrentChunk)/float64(s.TotalChunks), 20))
			fmt.Fprintf(&b, " %s", Dim(fmt.Sprintf("chunk %d/%d", s.CurrentChunk, s.TotalChunks)))
		}
		if s.EpicsCount > 0 {
			fmt.Fprintf(&b, " %s", Dim(fmt.Sprintf("%d epics so far", s.EpicsCount)))
		}
	}
	for _, w := range s.Warnings {
		b.WriteString("\n" + Warn(w))
	}
	return b.String()
}
