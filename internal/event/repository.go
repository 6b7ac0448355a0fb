package event

import (
	"sync"
	"time"
)

// Repository is a storage interface which can be implemented by multiple backend
// (in-memory map, sql database, in-memory cache, file system, ...)
// It is the append-only ledger of incoming domain events
type Repository interface {
	Create(event Event) (string, error)
	Get(id string) (Event, bool, error)
	List(filter Filter, limit int, offset int) ([]Event, error)
	MarkProcessing(id string) error
	MarkCompleted(id string, actionsTriggered []string, actionResults map[string]interface{}) error
	MarkFailed(id string, errorMessage string) error
	Requeue(id string) error
	ListStuckProcessing(olderThan time.Duration) ([]Event, error)
	CountStats() (Stats, error)
}

var (
	_globalRepositoryMu sync.RWMutex
	_globalRepository   Repository
)

// R is used to access the global repository singleton
func R() Repository {
	_globalRepositoryMu.RLock()
	defer _globalRepositoryMu.RUnlock()

	repository := _globalRepository
	return repository
}

// ReplaceGlobals affect a new repository to the global repository singleton
func ReplaceGlobals(repository Repository) func() {
	_globalRepositoryMu.Lock()
	defer _globalRepositoryMu.Unlock()

	prev := _globalRepository
	_globalRepository = repository
	return func() { ReplaceGlobals(prev) }
}
