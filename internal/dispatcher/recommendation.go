package dispatcher

import (
	"context"
	"errors"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier/notification"
)

// RecommendationExecutor publishes a retention/outreach recommendation for the
// subject, templated from its current attribute snapshot
type RecommendationExecutor struct{}

// NewRecommendationExecutor returns a new RecommendationExecutor
func NewRecommendationExecutor() *RecommendationExecutor {
	return &RecommendationExecutor{}
}

// Execute builds and broadcasts the recommendation described by the action parameters
func (e *RecommendationExecutor) Execute(ctx context.Context, params map[string]interface{}, dctx Context) error {
	n := notifier.C()
	if n == nil {
		return errors.New("notifier not initialized")
	}

	rendered, err := RenderParams(params, dctx)
	if err != nil {
		return err
	}

	message, ok := StringParam(rendered, "message")
	if !ok {
		return errors.New("missing message parameter")
	}
	category, _ := StringParam(rendered, "category")

	n.Broadcast(notification.Notification{
		Type:    "recommendation",
		Level:   notification.LevelInfo,
		Title:   dctx.RuleName,
		Message: message,
		Context: map[string]interface{}{
			"rule_id":    dctx.RuleID,
			"subject_id": dctx.SubjectID,
			"category":   category,
		},
	})
	return nil
}
