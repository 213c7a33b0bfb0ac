package domain

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// ValidPriorities is the canonical set of accepted priority labels.
var ValidPriorities = map[Priority]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityCritical: true,
}

type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

type RunStatus string

const (
	RunUploaded   RunStatus = "uploaded"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncSuccess   SyncStatus = "success"
	SyncError     SyncStatus = "error"
	SyncNotSynced SyncStatus = "not_synced"
)

type TaskType string

const (
	TaskEpic    TaskType = "epic"
	TaskStory   TaskType = "story"
	TaskSubtask TaskType = "subtask"
)
