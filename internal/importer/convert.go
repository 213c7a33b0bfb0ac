package importer

import (
	"math"
	"strings"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// Convert resolves the wire schema into the domain hierarchy. Optional
// numbers are resolved here, once: zero, negative and missing estimates all
// become domain.Hours{}.
func Convert(schema *DecompositionSchema) domain.Decomposition {
	d := domain.Decomposition{
		RunID:         schema.RunID,
		GeneratedAt:   schema.GeneratedAt,
		SchemaVersion: schema.SchemaVersion,
		TotalHours:    domain.HoursFromPtr(schema.TotalEstimatedHours.Value),
		TimelineWeeks: wholeNumber(schema.TimelineWeeks),
		Warnings:      schema.Warnings,
		Epics:         make([]domain.Epic, 0, len(schema.Epics)),
	}
	for _, e := range schema.Epics {
		d.Epics = append(d.Epics, convertEpic(e))
	}
	return d
}

func convertEpic(e EpicImport) domain.Epic {
	epic := domain.Epic{
		ID:          strings.TrimSpace(e.ID),
		Title:       e.Title,
		Description: e.Description,
		Priority:    normalizePriority(e.Priority),
		Status:      e.Status,
		Estimate:    domain.HoursFromPtr(e.EstimatedHours.Value),
		Team:        e.Team,
		Labels:      e.Labels,
		Stories:     make([]domain.Story, 0, len(e.Stories)),
	}
	for _, s := range e.Stories {
		epic.Stories = append(epic.Stories, convertStory(s))
	}
	return epic
}

func convertStory(s StoryImport) domain.Story {
	story := domain.Story{
		ID:                 strings.TrimSpace(s.ID),
		Title:              s.Title,
		Description:        s.Description,
		AcceptanceCriteria: s.AcceptanceCriteria,
		Priority:           normalizePriority(s.Priority),
		Status:             s.Status,
		Estimate:           domain.HoursFromPtr(s.EstimatedHours.Value),
		Team:               s.Team,
		StoryPoints:        wholeNumber(s.StoryPoints),
		Subtasks:           make([]domain.Subtask, 0, len(s.Subtasks)),
	}
	for _, st := range s.Subtasks {
		story.Subtasks = append(story.Subtasks, domain.Subtask{
			ID:          strings.TrimSpace(st.ID),
			Title:       st.Title,
			Description: st.Description,
			Priority:    normalizePriority(st.Priority),
			Status:      st.Status,
			Estimate:    domain.HoursFromPtr(st.EstimatedHours.Value),
			Team:        st.Team,
		})
	}
	return story
}

// normalizePriority maps case variants onto the canonical labels. Unknown
// values pass through untouched; they are display-only.
func normalizePriority(p string) domain.Priority {
	for known := range domain.ValidPriorities {
		if strings.EqualFold(string(known), p) {
			return known
		}
	}
	return domain.Priority(p)
}

func wholeNumber(f FlexFloat) int {
	if f.Value == nil || *f.Value <= 0 {
		return 0
	}
	return int(math.Round(*f.Value))
}

// ParseDecomposition parses and converts in one step.
func ParseDecomposition(data []byte) (domain.Decomposition, error) {
	schema, err := Parse(data)
	if err != nil {
		return domain.Decomposition{}, err
	}
	return Convert(schema), nil
}
