package domain

// SyncResult is the ticketing sync outcome for a run, keyed by task ID.
type SyncResult struct {
	SyncStatus map[string]SyncStatus `json:"sync_status"`
}

// StatusOf returns the task's sync status, not_synced when unknown.
func (r SyncResult) StatusOf(taskID string) SyncStatus {
	if s, ok := r.SyncStatus[taskID]; ok && s != "" {
		return s
	}
	return SyncNotSynced
}

// Counts tallies successes and errors.
func (r SyncResult) Counts() (success, failed int) {
	for _, s := range r.SyncStatus {
		switch s {
		case SyncSuccess:
			success++
		case SyncError:
			failed++
		}
	}
	return success, failed
}

// HasErrors reports whether any task failed to sync.
func (r SyncResult) HasErrors() bool {
	_, failed := r.Counts()
	return failed > 0
}

// AllFailed reports whether there were results and every one errored.
func (r SyncResult) AllFailed() bool {
	if len(r.SyncStatus) == 0 {
		return false
	}
	success, failed := r.Counts()
	return success == 0 && failed == len(r.SyncStatus)
}
