package subject

import (
	"sync"
)

// Provider supplies the current attribute snapshot of a subject (creator),
// consumed read-only by the condition evaluator
type Provider interface {
	GetSnapshot(subjectID string) (map[string]interface{}, error)
}

var (
	_globalProviderMu sync.RWMutex
	_globalProvider   Provider
)

// P is used to access the global provider singleton
func P() Provider {
	_globalProviderMu.RLock()
	defer _globalProviderMu.RUnlock()

	provider := _globalProvider
	return provider
}

// ReplaceGlobals affect a new provider to the global provider singleton
func ReplaceGlobals(provider Provider) func() {
	_globalProviderMu.Lock()
	defer _globalProviderMu.Unlock()

	prev := _globalProvider
	_globalProvider = provider
	return func() { ReplaceGlobals(prev) }
}
