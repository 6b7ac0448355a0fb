package event

import (
	"errors"
	"fmt"
	"time"
)

// Event lifecycle statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ErrInvalidTransition is returned when an event status update does not follow
// the pending -> processing -> completed|failed lifecycle
var ErrInvalidTransition = errors.New("invalid event status transition")

// Event is a single domain event appended to the ledger. Everything but
// Status, ActionsTriggered, ActionResults and ErrorMessage is immutable once
// written; those fields are set exactly once by the engine as it processes
// the event.
type Event struct {
	ID               string                 `json:"id"`
	EventType        string                 `json:"event_type"`
	SourceEntity     string                 `json:"source_entity"`
	SourceID         string                 `json:"source_id,omitempty"`
	SubjectID        string                 `json:"subject_id"`
	Payload          map[string]interface{} `json:"payload,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
	Status           string                 `json:"status"`
	ActionsTriggered []string               `json:"actions_triggered,omitempty"`
	ActionResults    map[string]interface{} `json:"action_results,omitempty"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
}

// IsValid checks if an event definition is valid and has no missing mandatory fields
func (e *Event) IsValid() (bool, error) {
	if e.EventType == "" {
		return false, errors.New("missing EventType")
	}
	if e.SourceEntity == "" {
		return false, errors.New("missing SourceEntity")
	}
	if e.SubjectID == "" {
		return false, errors.New("missing SubjectID")
	}
	return true, nil
}

// IsTerminal returns true once the event reached a final status
func (e *Event) IsTerminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusFailed
}

// Filter restricts the events returned by Repository.List
type Filter struct {
	EventType string
	Status    string
	From      time.Time
	To        time.Time
}

// Stats is the aggregate view of the ledger consumed by the dashboards
type Stats struct {
	TotalEvents     int64            `json:"total_events"`
	EventsLast24h   int64            `json:"events_last_24h"`
	ByType          map[string]int64 `json:"by_type"`
	ByStatus        map[string]int64 `json:"by_status"`
	AutomationRules RuleStats        `json:"automation_rules"`
}

// RuleStats carries the rule counters attached to the ledger stats
type RuleStats struct {
	Active int64 `json:"active"`
	Total  int64 `json:"total"`
}

func invalidTransition(id string, from string, to string) error {
	return fmt.Errorf("event %s: %s -> %s: %w", id, from, to, ErrInvalidTransition)
}
