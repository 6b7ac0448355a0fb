package execution

import (
	"time"
)

// ActionOutcome is the per-action entry of a record, in the same order as the
// rule action list at trigger time
type ActionOutcome struct {
	ActionType string `json:"action_type"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Record is the append-only audit trail entry written for every successful
// rule trigger. It is never mutated after creation.
type Record struct {
	ID              string                 `json:"id"`
	RuleID          int64                  `json:"rule_id"`
	RuleName        string                 `json:"rule_name"`
	SubjectID       string                 `json:"subject_id"`
	TriggeredAt     time.Time              `json:"triggered_at"`
	ActionsExecuted []ActionOutcome        `json:"actions_executed"`
	MetricsSnapshot map[string]interface{} `json:"metrics_snapshot,omitempty"`
}

// Filter restricts the records returned by Repository.List
type Filter struct {
	RuleID    int64
	SubjectID string
	From      time.Time
	To        time.Time
}
