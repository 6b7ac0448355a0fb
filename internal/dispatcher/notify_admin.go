package dispatcher

import (
	"context"
	"errors"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier/notification"
)

// NotifyAdminExecutor broadcasts an operator notification to the connected dashboards
type NotifyAdminExecutor struct{}

// NewNotifyAdminExecutor returns a new NotifyAdminExecutor
func NewNotifyAdminExecutor() *NotifyAdminExecutor {
	return &NotifyAdminExecutor{}
}

// Execute persists and broadcasts the notification described by the action parameters
func (e *NotifyAdminExecutor) Execute(ctx context.Context, params map[string]interface{}, dctx Context) error {
	n := notifier.C()
	if n == nil {
		return errors.New("notifier not initialized")
	}

	rendered, err := RenderParams(params, dctx)
	if err != nil {
		return err
	}

	title, ok := StringParam(rendered, "title")
	if !ok {
		title = dctx.RuleName
	}
	message, _ := StringParam(rendered, "message")
	level, ok := StringParam(rendered, "level")
	if !ok {
		level = notification.LevelInfo
	}

	n.Broadcast(notification.Notification{
		Type:    "admin_alert",
		Level:   level,
		Title:   title,
		Message: message,
		Context: map[string]interface{}{
			"rule_id":    dctx.RuleID,
			"rule_name":  dctx.RuleName,
			"subject_id": dctx.SubjectID,
			"event_type": dctx.Event.EventType,
		},
	})
	return nil
}
