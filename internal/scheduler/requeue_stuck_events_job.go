package scheduler

import (
	"errors"
	"time"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/engine"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
	"go.uber.org/zap"
)

const requeueStuckEventsJobName = "requeue_stuck_events"

// RequeueStuckEventsJob puts events stranded in processing back in the engine
// queue. A worker crash or an engine restart under load leaves such events
// behind; replaying them is safe because the cooldown gate already fired for
// anything that was dispatched.
type RequeueStuckEventsJob struct {
	OlderThan time.Duration
}

// IsValid checks if the job definition is valid and has no missing mandatory fields
func (job RequeueStuckEventsJob) IsValid() (bool, error) {
	if job.OlderThan <= 0 {
		return false, errors.New("missing OlderThan")
	}
	return true, nil
}

// Run contains all the business logic of the job
func (job RequeueStuckEventsJob) Run() {
	if S().ExistingRunningJob(requeueStuckEventsJobName) {
		zap.L().Info("Skipping RequeueStuckEventsJob because last execution is still running")
		return
	}
	S().AddRunningJob(requeueStuckEventsJobName)
	defer S().RemoveRunningJob(requeueStuckEventsJobName)

	stuck, err := event.R().ListStuckProcessing(job.OlderThan)
	if err != nil {
		zap.L().Error("Listing stuck processing events", zap.Error(err))
		return
	}
	if len(stuck) == 0 {
		return
	}

	zap.L().Info("Requeue stuck events job started", zap.Int("count", len(stuck)))
	for _, ev := range stuck {
		if err := event.R().Requeue(ev.ID); err != nil {
			zap.L().Error("Requeueing stuck event", zap.String("id", ev.ID), zap.Error(err))
			continue
		}
		if err := engine.E().Queue(ev.ID); err != nil {
			// stays pending, picked up on the next run
			zap.L().Warn("Stuck event left pending", zap.String("id", ev.ID), zap.Error(err))
		}
	}
	zap.L().Info("Requeue stuck events job ended")
}
