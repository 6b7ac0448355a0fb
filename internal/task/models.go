package task

import (
	"errors"
	"time"
)

// Task statuses
const (
	StatusOpen = "open"
	StatusDone = "done"
)

// Task is a follow-up item created by the create_task automation action,
// surfaced to operators in the dashboards
type Task struct {
	ID        int64     `json:"id"`
	SubjectID string    `json:"subject_id"`
	Title     string    `json:"title"`
	Details   string    `json:"details,omitempty"`
	RuleID    int64     `json:"rule_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValid checks if a task definition is valid and has no missing mandatory fields
func (t *Task) IsValid() (bool, error) {
	if t.SubjectID == "" {
		return false, errors.New("missing SubjectID")
	}
	if t.Title == "" {
		return false, errors.New("missing Title")
	}
	return true, nil
}
