package scheduler

import (
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/engine"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
	"go.uber.org/zap"
)

const replayFailedEventsJobName = "replay_failed_events"

// ReplayFailedEventsJob re-queues failed events for another processing pass.
// Failures here are infrastructure failures; once the cause is gone the
// replay either completes the event or fails it again.
type ReplayFailedEventsJob struct {
	BatchSize int
}

// Run contains all the business logic of the job
func (job ReplayFailedEventsJob) Run() {
	if S().ExistingRunningJob(replayFailedEventsJobName) {
		zap.L().Info("Skipping ReplayFailedEventsJob because last execution is still running")
		return
	}
	S().AddRunningJob(replayFailedEventsJobName)
	defer S().RemoveRunningJob(replayFailedEventsJobName)

	limit := job.BatchSize
	if limit <= 0 {
		limit = 100
	}
	failed, err := event.R().List(event.Filter{Status: event.StatusFailed}, limit, 0)
	if err != nil {
		zap.L().Error("Listing failed events", zap.Error(err))
		return
	}
	if len(failed) == 0 {
		return
	}

	zap.L().Info("Replay failed events job started", zap.Int("count", len(failed)))
	for _, ev := range failed {
		if err := event.R().Requeue(ev.ID); err != nil {
			zap.L().Error("Requeueing failed event", zap.String("id", ev.ID), zap.Error(err))
			continue
		}
		if err := engine.E().Queue(ev.ID); err != nil {
			zap.L().Warn("Replayed event left pending", zap.String("id", ev.ID), zap.Error(err))
		}
	}
	zap.L().Info("Replay failed events job ended")
}
