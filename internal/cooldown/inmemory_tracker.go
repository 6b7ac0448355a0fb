package cooldown

import (
	"fmt"
	"sync"
	"time"
)

// InMemoryTracker is an implementation of the cooldown tracker backed by a
// mutex-guarded map, used for tests and standalone runs without a database
type InMemoryTracker struct {
	mutex         sync.Mutex
	lastTriggered map[string]time.Time
	now           func() time.Time
}

// NewInMemoryTracker returns a new instance of InMemoryTracker
func NewInMemoryTracker() *InMemoryTracker {
	return &InMemoryTracker{
		lastTriggered: make(map[string]time.Time),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the tracker time source
func (t *InMemoryTracker) SetClock(now func() time.Time) {
	t.now = now
}

func key(ruleID int64, subjectID string) string {
	return fmt.Sprintf("%d-%s", ruleID, subjectID)
}

// TryAcquire atomically checks and records the acquisition under a single lock
func (t *InMemoryTracker) TryAcquire(ruleID int64, subjectID string, cooldown time.Duration) (bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := t.now()
	k := key(ruleID, subjectID)
	if last, ok := t.lastTriggered[k]; ok && now.Sub(last) < cooldown {
		return false, nil
	}
	t.lastTriggered[k] = now
	return true, nil
}

// LastTriggered returns the last acquisition time for a (rule, subject) pair
func (t *InMemoryTracker) LastTriggered(ruleID int64, subjectID string) (time.Time, bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	last, ok := t.lastTriggered[key(ruleID, subjectID)]
	return last, ok, nil
}
