package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/task"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/tests"
)

func setupTaskHandlers(t *testing.T) {
	t.Helper()
	t.Cleanup(task.ReplaceGlobals(task.NewInMemoryRepository()))
}

func TestGetTasksMissingSubject(t *testing.T) {
	setupTaskHandlers(t)

	rr := tests.BuildTestHandler(t, "GET", "/tasks", "", "/tasks", GetTasks)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v", rr.Code)
	}
}

func TestGetTasksBySubject(t *testing.T) {
	setupTaskHandlers(t)

	if _, err := task.R().Create(task.Task{SubjectID: "c1", Title: "Review churn risk", RuleID: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := task.R().Create(task.Task{SubjectID: "c2", Title: "Other creator"}); err != nil {
		t.Fatal(err)
	}

	rr := tests.BuildTestHandler(t, "GET", "/tasks?subject_id=c1", "", "/tasks", GetTasks)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v (%s)", rr.Code, rr.Body.String())
	}

	var listed []task.Task
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].Title != "Review churn risk" {
		t.Errorf("tasks = %+v, expected only the c1 task", listed)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	setupTaskHandlers(t)

	rr := tests.BuildTestHandler(t, "GET", "/tasks/9999", "", "/tasks/{id}", GetTask)
	if rr.Code != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v", rr.Code)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	setupTaskHandlers(t)

	id, err := task.R().Create(task.Task{SubjectID: "c1", Title: "Review churn risk"})
	if err != nil {
		t.Fatal(err)
	}

	route := fmt.Sprintf("/tasks/%d/status", id)
	rr := tests.BuildTestHandler(t, "PUT", route, `{"status": "done"}`, "/tasks/{id}/status", UpdateTaskStatus)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v (%s)", rr.Code, rr.Body.String())
	}

	updated, _, err := task.R().Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != task.StatusDone {
		t.Errorf("status = %s, expected %s", updated.Status, task.StatusDone)
	}

	rr = tests.BuildTestHandler(t, "PUT", route, `{"status": "archived"}`, "/tasks/{id}/status", UpdateTaskStatus)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid status returned wrong status code: got %v", rr.Code)
	}

	rr = tests.BuildTestHandler(t, "PUT", "/tasks/9999/status", `{"status": "done"}`, "/tasks/{id}/status", UpdateTaskStatus)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown task returned wrong status code: got %v", rr.Code)
	}
}
