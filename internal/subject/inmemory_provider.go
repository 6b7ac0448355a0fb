package subject

import (
	"sync"
)

// InMemoryProvider serves snapshots from a plain map, used for tests and for
// the synthetic test-evaluate surface
type InMemoryProvider struct {
	mutex     sync.RWMutex
	snapshots map[string]map[string]interface{}
}

// NewInMemoryProvider returns a new instance of InMemoryProvider
func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{
		snapshots: make(map[string]map[string]interface{}),
	}
}

// Set stores the snapshot of a subject
func (p *InMemoryProvider) Set(subjectID string, snapshot map[string]interface{}) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.snapshots[subjectID] = snapshot
}

// GetSnapshot returns the current attributes of a subject, empty if unknown
func (p *InMemoryProvider) GetSnapshot(subjectID string) (map[string]interface{}, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	snapshot, ok := p.snapshots[subjectID]
	if !ok {
		return map[string]interface{}{}, nil
	}
	copied := make(map[string]interface{}, len(snapshot))
	for k, v := range snapshot {
		copied[k] = v
	}
	return copied, nil
}
