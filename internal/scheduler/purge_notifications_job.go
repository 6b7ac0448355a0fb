package scheduler

import (
	"time"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier/notification"
	"go.uber.org/zap"
)

const purgeNotificationsJobName = "purge_notifications"

// PurgeNotificationsJob deletes dashboard notifications past their lifetime
type PurgeNotificationsJob struct {
	Lifetime time.Duration
}

// Run contains all the business logic of the job
func (job PurgeNotificationsJob) Run() {
	if S().ExistingRunningJob(purgeNotificationsJobName) {
		zap.L().Info("Skipping PurgeNotificationsJob because last execution is still running")
		return
	}
	S().AddRunningJob(purgeNotificationsJobName)
	defer S().RemoveRunningJob(purgeNotificationsJobName)

	count, err := notification.R().DeleteOlderThan(job.Lifetime)
	if err != nil {
		zap.L().Error("Purging notifications", zap.Error(err))
		return
	}
	if count > 0 {
		zap.L().Info("Purged expired notifications", zap.Int64("count", count))
	}
}
