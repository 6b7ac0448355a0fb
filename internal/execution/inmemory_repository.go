package execution

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository is an implementation of the execution record repository
// backed by a plain slice, used for tests and standalone runs without a database
type InMemoryRepository struct {
	mutex   sync.RWMutex
	records []Record
}

// NewInMemoryRepository returns a new instance of InMemoryRepository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make([]Record, 0),
	}
}

// Create appends a new execution record
func (r *InMemoryRepository) Create(record Record) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.TriggeredAt.IsZero() {
		record.TriggeredAt = time.Now().UTC()
	}
	r.records = append(r.records, record)
	return record.ID, nil
}

// Get search and returns an execution record by its id
func (r *InMemoryRepository) Get(id string) (Record, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, record := range r.records {
		if record.ID == id {
			return record, true, nil
		}
	}
	return Record{}, false, nil
}

// List returns a deterministic reverse-chronological page of records matching the filter
func (r *InMemoryRepository) List(filter Filter, limit int, offset int) ([]Record, error) {
	r.mutex.RLock()
	records := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		if filter.RuleID != 0 && record.RuleID != filter.RuleID {
			continue
		}
		if filter.SubjectID != "" && record.SubjectID != filter.SubjectID {
			continue
		}
		if !filter.From.IsZero() && record.TriggeredAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !record.TriggeredAt.Before(filter.To) {
			continue
		}
		records = append(records, record)
	}
	r.mutex.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].TriggeredAt.Equal(records[j].TriggeredAt) {
			return records[i].TriggeredAt.After(records[j].TriggeredAt)
		}
		return records[i].ID > records[j].ID
	})

	if offset > 0 {
		if offset >= len(records) {
			return []Record{}, nil
		}
		records = records[offset:]
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

// CountByRule returns the number of records referencing the input rule
func (r *InMemoryRepository) CountByRule(ruleID int64) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var count int64
	for _, record := range r.records {
		if record.RuleID == ruleID {
			count++
		}
	}
	return count, nil
}

// LastByRule returns the most recent trigger time of the input rule
func (r *InMemoryRepository) LastByRule(ruleID int64) (time.Time, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var last time.Time
	found := false
	for _, record := range r.records {
		if record.RuleID == ruleID && record.TriggeredAt.After(last) {
			last = record.TriggeredAt
			found = true
		}
	}
	return last, found, nil
}
