package app

import (
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/cooldown"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/dispatcher"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/engine"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/execution"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier/notification"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/rule"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/scheduler"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/subject"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/task"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/pkg/email"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// initRepositories initialize all postgresql repositories
func initRepositories() {
	dbClient := DB()
	event.ReplaceGlobals(event.NewPostgresRepository(dbClient))
	rule.ReplaceGlobals(rule.NewPostgresRepository(dbClient))
	execution.ReplaceGlobals(execution.NewPostgresRepository(dbClient))
	cooldown.ReplaceGlobals(cooldown.NewPostgresTracker(dbClient))
	subject.ReplaceGlobals(subject.NewPostgresProvider(dbClient))
	task.ReplaceGlobals(task.NewPostgresRepository(dbClient))
	notification.ReplaceGlobals(notification.NewPostgresRepository(dbClient))
}

func initServices() {
	initEmailSender()
	initNotifier()
	initDispatcher()
	initEngine()
	initScheduler()
}

func stopServices() {
	scheduler.S().Stop()
	engine.E().Stop()
}

func initNotifier() {
	notifier.ReplaceGlobals(notifier.NewNotifier())
}

func initDispatcher() {
	d := dispatcher.NewDispatcher(viper.GetDuration("ENGINE_ACTION_TIMEOUT"))
	d.RegisterExecutor(dispatcher.ActionSendEmail, dispatcher.NewSendEmailExecutor())
	d.RegisterExecutor(dispatcher.ActionCreateTask, dispatcher.NewCreateTaskExecutor())
	d.RegisterExecutor(dispatcher.ActionNotifyAdmin, dispatcher.NewNotifyAdminExecutor())
	d.RegisterExecutor(dispatcher.ActionGenerateRecommendation, dispatcher.NewRecommendationExecutor())
	dispatcher.ReplaceGlobals(d)
}

func initEngine() {
	engine.ReplaceGlobals(engine.NewEngine(
		viper.GetInt("ENGINE_QUEUE_BUFFER_SIZE"),
		viper.GetInt("ENGINE_WORKER_COUNT"),
	))
	engine.E().Start()
}

func initScheduler() {
	scheduler.ReplaceGlobals(scheduler.NewScheduler())

	err := scheduler.S().AddJobSchedule(viper.GetString("SCHEDULER_STUCK_EVENTS_CRON"), scheduler.RequeueStuckEventsJob{
		OlderThan: viper.GetDuration("SCHEDULER_STUCK_EVENTS_MAX_AGE"),
	})
	if err != nil {
		zap.L().Error("Couldn't schedule stuck events requeue", zap.Error(err))
	}

	if cronExpr := viper.GetString("SCHEDULER_REPLAY_FAILED_CRON"); cronExpr != "" {
		err = scheduler.S().AddJobSchedule(cronExpr, scheduler.ReplayFailedEventsJob{
			BatchSize: viper.GetInt("SCHEDULER_REPLAY_FAILED_BATCH_SIZE"),
		})
		if err != nil {
			zap.L().Error("Couldn't schedule failed events replay", zap.Error(err))
		}
	}

	err = scheduler.S().AddJobSchedule(viper.GetString("SCHEDULER_NOTIFICATIONS_PURGE_CRON"), scheduler.PurgeNotificationsJob{
		Lifetime: viper.GetDuration("NOTIFICATION_LIFETIME"),
	})
	if err != nil {
		zap.L().Error("Couldn't schedule notifications purge", zap.Error(err))
	}

	if viper.GetBool("ENABLE_CRONS_ON_START") {
		scheduler.S().Start()
	}
}

func initEmailSender() {
	username := viper.GetString("SMTP_USERNAME")
	password := viper.GetString("SMTP_PASSWORD")
	host := viper.GetString("SMTP_HOST")
	port := viper.GetString("SMTP_PORT")
	email.InitSender(username, password, host, port)
}
