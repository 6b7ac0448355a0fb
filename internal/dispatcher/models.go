package dispatcher

import (
	"context"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
)

// Built-in action types
const (
	ActionSendEmail              = "send_email"
	ActionCreateTask             = "create_task"
	ActionNotifyAdmin            = "notify_admin"
	ActionGenerateRecommendation = "generate_recommendation"
)

// ErrUnknownActionType is the error string recorded when a rule references an
// action type with no registered executor
const ErrUnknownActionType = "unknown_action_type"

// Context carries the data an executor may need to perform an action
type Context struct {
	RuleID    int64
	RuleName  string
	SubjectID string
	Event     event.Event
	Snapshot  map[string]interface{}
}

// Executor is the capability bound to a single action type. Implementations
// must tolerate at-least-once invocation.
type Executor interface {
	Execute(ctx context.Context, params map[string]interface{}, dctx Context) error
}
