package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
)

const (
	defaultEpicTeam  = "product"
	defaultStoryTeam = "backend"
	defaultPriority  = "medium"
)

type assignmentService struct {
	backend        AssignmentBackend
	decompositions DecompositionService
	observer       UseCaseObserver
	now            func() time.Time
}

func NewAssignmentService(b AssignmentBackend, decompositions DecompositionService, observers ...UseCaseObserver) AssignmentService {
	return &assignmentService{
		backend:        b,
		decompositions: decompositions,
		observer:       useCaseObserverOrNoop(observers),
		now:            time.Now,
	}
}

func (s *assignmentService) Users(ctx context.Context, refresh bool) ([]domain.User, error) {
	users, err := s.backend.ListUsers(ctx, refresh)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *assignmentService) Tasks(ctx context.Context, runID string) ([]domain.AssignmentTask, error) {
	loaded, err := s.decompositions.Load(ctx, runID, false)
	if err != nil {
		return nil, err
	}
	return BuildAssignmentTasks(loaded.Decomposition), nil
}

func (s *assignmentService) Suggest(ctx context.Context, runID string) (suggestions domain.Assignments, err error) {
	fields := map[string]any{"run_id": runID}
	defer track(ctx, s.observer, "suggest-assignees", fields)(&err)

	users, err := s.Users(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNoUsers
	}
	tasks, err := s.Tasks(ctx, runID)
	if err != nil {
		return nil, err
	}
	fields["users"] = len(users)
	fields["tasks"] = len(tasks)

	suggestions, err = s.backend.SuggestAssignees(ctx, runID, users, tasks)
	if err != nil {
		return nil, fmt.Errorf("suggesting assignees: %w", err)
	}
	return suggestions, nil
}

func (s *assignmentService) Saved(ctx context.Context, runID string) (domain.Assignments, error) {
	saved, err := s.backend.GetSuggestions(ctx, runID)
	if errors.Is(err, backend.ErrNotFound) {
		return domain.Assignments{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading suggestions: %w", err)
	}
	if saved == nil {
		saved = domain.Assignments{}
	}
	return saved, nil
}

func (s *assignmentService) Final(ctx context.Context, runID string) (domain.FinalAssignments, error) {
	fa, err := s.backend.GetFinalAssignments(ctx, runID)
	if errors.Is(err, backend.ErrNotFound) {
		return domain.FinalAssignments{}, ErrNoAssignments
	}
	if err != nil {
		return domain.FinalAssignments{}, fmt.Errorf("loading final assignments: %w", err)
	}
	return fa, nil
}

func (s *assignmentService) Save(ctx context.Context, runID string, assignments domain.Assignments) (fa domain.FinalAssignments, err error) {
	fields := map[string]any{"run_id": runID, "assigned": len(assignments)}
	defer track(ctx, s.observer, "save-assignments", fields)(&err)

	loaded, err := s.decompositions.Load(ctx, runID, false)
	if err != nil {
		return domain.FinalAssignments{}, err
	}
	users, err := s.Users(ctx, false)
	if err != nil {
		return domain.FinalAssignments{}, err
	}

	fa = BuildFinalAssignments(runID, loaded.Decomposition, assignments, users, s.now())
	if err = s.backend.SaveFinalAssignments(ctx, runID, fa); err != nil {
		return domain.FinalAssignments{}, fmt.Errorf("saving final assignments: %w", err)
	}
	return fa, nil
}

// BuildAssignmentTasks flattens the hierarchy into the suggestion task
// list. Epics default to the product team and stories to backend;
// subtasks inherit their story's team.
func BuildAssignmentTasks(d domain.Decomposition) []domain.AssignmentTask {
	var tasks []domain.AssignmentTask
	for i, e := range d.Epics {
		epicKey := domain.EpicKey(e, i)
		tasks = append(tasks, domain.AssignmentTask{
			ID:          epicKey,
			Title:       e.Title,
			Description: e.Description,
			Team:        domain.CoalesceStr(e.Team, defaultEpicTeam),
			Priority:    taskPriority(e.Priority),
			TaskType:    domain.TaskEpic,
		})
		for j, st := range e.Stories {
			storyKey := domain.StoryKey(epicKey, st, j)
			storyTeam := domain.CoalesceStr(st.Team, defaultStoryTeam)
			tasks = append(tasks, domain.AssignmentTask{
				ID:          storyKey,
				Title:       st.Title,
				Description: st.Description,
				Team:        storyTeam,
				Priority:    taskPriority(st.Priority),
				TaskType:    domain.TaskStory,
			})
			for k, sub := range st.Subtasks {
				tasks = append(tasks, domain.AssignmentTask{
					ID:          domain.SubtaskKey(storyKey, sub, k),
					Title:       sub.Title,
					Description: sub.Description,
					Team:        domain.CoalesceStr(sub.Team, storyTeam),
					Priority:    taskPriority(sub.Priority),
					TaskType:    domain.TaskSubtask,
				})
			}
		}
	}
	return tasks
}

func taskPriority(p domain.Priority) string {
	if p == "" {
		return defaultPriority
	}
	return strings.ToLower(string(p))
}

// BuildFinalAssignments mirrors the hierarchy with each item's assignee
// and the assignee's display name. Unknown accounts keep an empty name.
func BuildFinalAssignments(runID string, d domain.Decomposition, assignments domain.Assignments, users []domain.User, now time.Time) domain.FinalAssignments {
	item := func(id, title, desc string) domain.AssignedItem {
		it := domain.AssignedItem{ID: id, Title: title, Description: desc, Assignee: assignments[id]}
		if u, ok := domain.FindUser(users, it.Assignee); ok && it.Assignee != "" {
			it.AssigneeName = u.DisplayName
		}
		return it
	}

	fa := domain.FinalAssignments{
		RunID:   runID,
		SavedAt: now.UTC().Format(time.RFC3339),
		Epics:   make([]domain.AssignedEpic, 0, len(d.Epics)),
	}
	for i, e := range d.Epics {
		epicKey := domain.EpicKey(e, i)
		ae := domain.AssignedEpic{
			AssignedItem: item(epicKey, e.Title, e.Description),
			Stories:      make([]domain.AssignedStory, 0, len(e.Stories)),
		}
		for j, st := range e.Stories {
			storyKey := domain.StoryKey(epicKey, st, j)
			as := domain.AssignedStory{
				AssignedItem: item(storyKey, st.Title, st.Description),
				Subtasks:     make([]domain.AssignedItem, 0, len(st.Subtasks)),
			}
			for k, sub := range st.Subtasks {
				as.Subtasks = append(as.Subtasks, item(domain.SubtaskKey(storyKey, sub, k), sub.Title, sub.Description))
			}
			ae.Stories = append(ae.Stories, as)
		}
		fa.Epics = append(fa.Epics, ae)
	}
	return fa
}
