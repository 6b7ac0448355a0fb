package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/handlers/render"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/task"
	"go.uber.org/zap"
)

// GetTasks returns the follow-up tasks of a single subject
func GetTasks(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subject_id")
	if subjectID == "" {
		zap.L().Warn("Missing subject_id on tasks listing")
		render.Error(w, r, render.ErrAPIMissingParam, errors.New("missing subject_id"))
		return
	}

	tasks, err := task.R().GetAllBySubject(subjectID)
	if err != nil {
		zap.L().Error("Error getting tasks", zap.String("subject_id", subjectID), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	render.JSON(w, r, tasks)
}

// GetTask returns a single follow-up task by id
func GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := ParamToInt64(r, "id")
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}

	t, found, err := task.R().Get(id)
	if err != nil {
		zap.L().Error("Error getting task", zap.Int64("id", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	if !found {
		render.Error(w, r, render.ErrAPIDBResourceNotFound, nil)
		return
	}

	render.JSON(w, r, t)
}

type updateTaskStatusInput struct {
	Status string `json:"status"`
}

// UpdateTaskStatus sets the status of a follow-up task (open or done)
func UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := ParamToInt64(r, "id")
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}

	var input updateTaskStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		zap.L().Warn("Decode task status input", zap.Error(err))
		render.Error(w, r, render.ErrAPIDecodeJSONBody, err)
		return
	}
	if input.Status != task.StatusOpen && input.Status != task.StatusDone {
		zap.L().Warn("Invalid task status", zap.String("status", input.Status))
		render.Error(w, r, render.ErrAPIResourceInvalid, errors.New("invalid status"))
		return
	}

	_, found, err := task.R().Get(id)
	if err != nil {
		zap.L().Error("Error getting task", zap.Int64("id", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	if !found {
		render.Error(w, r, render.ErrAPIDBResourceNotFound, nil)
		return
	}

	if err := task.R().SetStatus(id, input.Status); err != nil {
		zap.L().Error("Set task status", zap.Int64("id", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBUpdateFailed, err)
		return
	}

	render.OK(w, r)
}
