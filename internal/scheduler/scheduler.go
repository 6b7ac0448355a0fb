package scheduler

import (
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// InternalScheduler runs the periodic maintenance jobs of the automation
// engine (stuck event recovery, failed event replay, notification cleanup)
type InternalScheduler struct {
	mu          sync.RWMutex
	C           *cron.Cron
	runningJobs map[string]bool
}

var (
	_globalInternalSchedulerMu sync.RWMutex
	_globalInternalScheduler   *InternalScheduler
)

// S is used to access the global scheduler singleton
func S() *InternalScheduler {
	_globalInternalSchedulerMu.RLock()
	defer _globalInternalSchedulerMu.RUnlock()

	scheduler := _globalInternalScheduler
	return scheduler
}

// ReplaceGlobals affect a new scheduler to the global scheduler singleton
func ReplaceGlobals(scheduler *InternalScheduler) func() {
	_globalInternalSchedulerMu.Lock()
	defer _globalInternalSchedulerMu.Unlock()

	prev := _globalInternalScheduler
	_globalInternalScheduler = scheduler
	return func() { ReplaceGlobals(prev) }
}

// NewScheduler returns a pointer to a new instance of InternalScheduler
func NewScheduler() *InternalScheduler {
	return &InternalScheduler{
		C:           cron.New(),
		runningJobs: make(map[string]bool),
	}
}

// AddJobSchedule registers a job under a cron expression
func (s *InternalScheduler) AddJobSchedule(cronExpr string, job cron.Job) error {
	zap.L().Info("Adding new schedule", zap.String("cron", cronExpr))

	_, err := s.C.AddJob(cronExpr, job)
	return err
}

// Start launches the cron loop
func (s *InternalScheduler) Start() {
	s.C.Start()
}

// Stop halts the cron loop, running jobs finish on their own
func (s *InternalScheduler) Stop() {
	s.C.Stop()
}

// ExistingRunningJob check if a job is already running
func (s *InternalScheduler) ExistingRunningJob(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.runningJobs[name]
	return ok
}

// AddRunningJob add a job name to the running job list
func (s *InternalScheduler) AddRunningJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runningJobs[name] = true
}

// RemoveRunningJob remove a job name from the running job list
func (s *InternalScheduler) RemoveRunningJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runningJobs, name)
}
