package dispatcher

import (
	"context"
	"errors"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/task"
)

// CreateTaskExecutor creates a follow-up task for the subject, surfaced to
// operators in the dashboards
type CreateTaskExecutor struct{}

// NewCreateTaskExecutor returns a new CreateTaskExecutor
func NewCreateTaskExecutor() *CreateTaskExecutor {
	return &CreateTaskExecutor{}
}

// Execute creates the task described by the action parameters
func (e *CreateTaskExecutor) Execute(ctx context.Context, params map[string]interface{}, dctx Context) error {
	repository := task.R()
	if repository == nil {
		return errors.New("task repository not initialized")
	}

	rendered, err := RenderParams(params, dctx)
	if err != nil {
		return err
	}

	title, ok := StringParam(rendered, "title")
	if !ok {
		return errors.New("missing title parameter")
	}
	details, _ := StringParam(rendered, "details")

	_, err = repository.Create(task.Task{
		SubjectID: dctx.SubjectID,
		Title:     title,
		Details:   details,
		RuleID:    dctx.RuleID,
	})
	return err
}
