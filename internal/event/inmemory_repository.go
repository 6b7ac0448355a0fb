package event

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository is an implementation of the event ledger backed by a
// plain map, used for tests and standalone runs without a database
type InMemoryRepository struct {
	mutex  sync.RWMutex
	events map[string]Event
	now    func() time.Time
}

// NewInMemoryRepository returns a new instance of InMemoryRepository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		events: make(map[string]Event),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the repository time source
func (r *InMemoryRepository) SetClock(now func() time.Time) {
	r.now = now
}

// Create appends a new event to the ledger with status pending
func (r *InMemoryRepository) Create(event Event) (string, error) {
	if valid, err := event.IsValid(); !valid {
		return "", err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	event.Status = StatusPending
	r.events[event.ID] = event
	return event.ID, nil
}

// Get search and returns an event from the ledger by its id
func (r *InMemoryRepository) Get(id string) (Event, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	event, ok := r.events[id]
	return event, ok, nil
}

// List returns a deterministic reverse-chronological page of events matching the filter
func (r *InMemoryRepository) List(filter Filter, limit int, offset int) ([]Event, error) {
	r.mutex.RLock()
	events := make([]Event, 0, len(r.events))
	for _, event := range r.events {
		if filter.EventType != "" && event.EventType != filter.EventType {
			continue
		}
		if filter.Status != "" && event.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && event.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !event.Timestamp.Before(filter.To) {
			continue
		}
		events = append(events, event)
	}
	r.mutex.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		return events[i].ID > events[j].ID
	})

	if offset > 0 {
		if offset >= len(events) {
			return []Event{}, nil
		}
		events = events[offset:]
	}
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

// MarkProcessing transitions an event from pending to processing
func (r *InMemoryRepository) MarkProcessing(id string) error {
	return r.transition(id, StatusProcessing, []string{StatusPending}, nil)
}

// MarkCompleted transitions an event from pending/processing to completed
func (r *InMemoryRepository) MarkCompleted(id string, actionsTriggered []string, actionResults map[string]interface{}) error {
	return r.transition(id, StatusCompleted, []string{StatusPending, StatusProcessing}, func(event *Event) {
		event.ActionsTriggered = actionsTriggered
		event.ActionResults = actionResults
	})
}

// MarkFailed transitions an event from pending/processing to failed
func (r *InMemoryRepository) MarkFailed(id string, errorMessage string) error {
	return r.transition(id, StatusFailed, []string{StatusPending, StatusProcessing}, func(event *Event) {
		event.ErrorMessage = errorMessage
	})
}

// Requeue puts a non-pending event back in pending state for replay
func (r *InMemoryRepository) Requeue(id string) error {
	return r.transition(id, StatusPending, []string{StatusProcessing, StatusCompleted, StatusFailed}, func(event *Event) {
		event.ErrorMessage = ""
	})
}

func (r *InMemoryRepository) transition(id string, to string, from []string, with func(*Event)) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	event, ok := r.events[id]
	if !ok {
		return fmt.Errorf("event %s not found", id)
	}
	allowed := false
	for _, status := range from {
		if event.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return invalidTransition(id, event.Status, to)
	}
	event.Status = to
	if with != nil {
		with(&event)
	}
	r.events[id] = event
	return nil
}

// ListStuckProcessing returns events left in processing for longer than the
// input duration. A zero duration returns every processing event.
func (r *InMemoryRepository) ListStuckProcessing(olderThan time.Duration) ([]Event, error) {
	filter := Filter{Status: StatusProcessing}
	if olderThan > 0 {
		filter.To = r.now().Add(-olderThan)
	}
	return r.List(filter, 0, 0)
}

// CountStats computes the aggregate ledger statistics consumed by the dashboards
func (r *InMemoryRepository) CountStats() (Stats, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := Stats{
		ByType:   make(map[string]int64),
		ByStatus: make(map[string]int64),
	}
	dayAgo := r.now().Add(-24 * time.Hour)
	for _, event := range r.events {
		stats.TotalEvents++
		if !event.Timestamp.Before(dayAgo) {
			stats.EventsLast24h++
		}
		stats.ByType[event.EventType]++
		stats.ByStatus[event.Status]++
	}
	return stats, nil
}
