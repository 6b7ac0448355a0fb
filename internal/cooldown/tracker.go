package cooldown

import (
	"sync"
	"time"
)

// Tracker enforces per-(rule, subject) minimum re-trigger intervals.
// TryAcquire is the single mutual-exclusion gate against duplicate triggering
// under concurrent event delivery: it must be atomic for a given pair, and it
// must never be served from a stale cache.
type Tracker interface {
	// TryAcquire returns true and records now as last-triggered iff no prior
	// record exists or the cooldown window has fully elapsed. A zero cooldown
	// always acquires. On false, the stored state is left untouched.
	TryAcquire(ruleID int64, subjectID string, cooldown time.Duration) (bool, error)
	LastTriggered(ruleID int64, subjectID string) (time.Time, bool, error)
}

var (
	_globalTrackerMu sync.RWMutex
	_globalTracker   Tracker
)

// T is used to access the global tracker singleton
func T() Tracker {
	_globalTrackerMu.RLock()
	defer _globalTrackerMu.RUnlock()

	tracker := _globalTracker
	return tracker
}

// ReplaceGlobals affect a new tracker to the global tracker singleton
func ReplaceGlobals(tracker Tracker) func() {
	_globalTrackerMu.Lock()
	defer _globalTrackerMu.Unlock()

	prev := _globalTracker
	_globalTracker = tracker
	return func() { ReplaceGlobals(prev) }
}
