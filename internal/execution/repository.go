package execution

import (
	"sync"
	"time"
)

// Repository is a storage interface which can be implemented by multiple backend
// (in-memory map, sql database, in-memory cache, file system, ...)
// It holds the append-only execution records and backs the rule trigger
// statistics exposed by the administration surface
type Repository interface {
	Create(record Record) (string, error)
	Get(id string) (Record, bool, error)
	List(filter Filter, limit int, offset int) ([]Record, error)
	CountByRule(ruleID int64) (int64, error)
	LastByRule(ruleID int64) (time.Time, bool, error)
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
