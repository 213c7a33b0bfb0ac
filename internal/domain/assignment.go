package domain

// User is a ticketing-system account that can own work.
type User struct {
	AccountID    string `json:"account_id"`
	DisplayName  string `json:"display_name"`
	EmailAddress string `json:"email_address,omitempty"`
	Role         string `json:"role,omitempty"`
}

// Assignments maps a task ID to the assignee's account ID.
type Assignments map[string]string

// AssignmentTask is one entry of the task list sent to the suggestion
// service.
type AssignmentTask struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Team        string   `json:"team"`
	Priority    string   `json:"priority"`
	TaskType    TaskType `json:"task_type"`
}

// FinalAssignments is the saved assignment tree for a run.
type FinalAssignments struct {
	RunID   string         `json:"run_id"`
	SavedAt string         `json:"saved_at"`
	Epics   []AssignedEpic `json:"epics"`
}

type AssignedEpic struct {
	AssignedItem
	Stories []AssignedStory `json:"stories"`
}

type AssignedStory struct {
	AssignedItem
	Subtasks []AssignedItem `json:"subtasks"`
}

type AssignedItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Assignee     string `json:"assignee"`
	AssigneeName string `json:"assignee_name"`
}

// Flatten returns task ID → assignee for every item with an ID.
func (f FinalAssignments) Flatten() Assignments {
	out := Assignments{}
	put := func(it AssignedItem) {
		if it.ID != "" {
			out[it.ID] = it.Assignee
		}
	}
	for _, e := range f.Epics {
		put(e.AssignedItem)
		for _, s := range e.Stories {
			put(s.AssignedItem)
			for _, st := range s.Subtasks {
				put(st)
			}
		}
	}
	return out
}

// FindUser returns the user with the given account ID.
func FindUser(users []User, accountID string) (User, bool) {
	for _, u := range users {
		if u.AccountID == accountID {
			return u, true
		}
	}
	return User{}, false
}
