package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/engine"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/tests"
)

func setupEventHandlers(t *testing.T) {
	t.Helper()
	t.Cleanup(event.ReplaceGlobals(event.NewInMemoryRepository()))
	// workers are not started, queued events stay pending
	t.Cleanup(engine.ReplaceGlobals(engine.NewEngine(10, 1)))
}

func TestPostEvent(t *testing.T) {
	setupEventHandlers(t)

	body := `{
		"event_type": "proposal.approved",
		"source_entity": "proposal",
		"source_id": "p42",
		"subject_id": "c1",
		"payload": {"amount": 120}
	}`
	rr := tests.BuildTestHandler(t, "POST", "/events", body, "/events", PostEvent)
	if rr.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v (%s)", rr.Code, rr.Body.String())
	}

	var created event.Event
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.Status != event.StatusPending {
		t.Errorf("created event = %+v", created)
	}
}

func TestPostEventMissingSubject(t *testing.T) {
	setupEventHandlers(t)

	body := `{"event_type": "proposal.approved", "source_entity": "proposal"}`
	rr := tests.BuildTestHandler(t, "POST", "/events", body, "/events", PostEvent)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}

func TestGetEventsFiltered(t *testing.T) {
	setupEventHandlers(t)

	for _, eventType := range []string{"proposal.approved", "proposal.rejected", "subscription.created"} {
		if _, err := event.R().Create(event.Event{
			EventType: eventType, SourceEntity: "test", SubjectID: "c1",
		}); err != nil {
			t.Fatal(err)
		}
	}

	rr := tests.BuildTestHandler(t, "GET", "/events?event_type=proposal.approved", ``, "/events", GetEvents)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v", rr.Code)
	}
	var events []event.Event
	if err := json.Unmarshal(rr.Body.Bytes(), &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].EventType != "proposal.approved" {
		t.Errorf("filtered events = %+v", events)
	}
}

func TestGetEventNotFound(t *testing.T) {
	setupEventHandlers(t)

	rr := tests.BuildTestHandler(t, "GET", "/events/does-not-exist", ``, "/events/{id}", GetEvent)
	if rr.Code != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
	}
}

func TestReplayEvent(t *testing.T) {
	setupEventHandlers(t)

	id, err := event.R().Create(event.Event{
		EventType: "proposal.approved", SourceEntity: "proposal", SubjectID: "c1",
	})
	if err != nil {
		t.Fatal(err)
	}

	// a pending event cannot be replayed, it has not been processed yet
	rr := tests.BuildTestHandler(t, "POST", fmt.Sprintf("/events/%s/replay", id), ``, "/events/{id}/replay", ReplayEvent)
	if rr.Code != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusConflict)
	}

	if err := event.R().MarkProcessing(id); err != nil {
		t.Fatal(err)
	}
	if err := event.R().MarkFailed(id, "store unavailable"); err != nil {
		t.Fatal(err)
	}

	rr = tests.BuildTestHandler(t, "POST", fmt.Sprintf("/events/%s/replay", id), ``, "/events/{id}/replay", ReplayEvent)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v (%s)", rr.Code, rr.Body.String())
	}

	replayed, _, err := event.R().Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if replayed.Status != event.StatusPending || replayed.ErrorMessage != "" {
		t.Errorf("replayed event = %+v", replayed)
	}

	rr = tests.BuildTestHandler(t, "POST", "/events/unknown/replay", ``, "/events/{id}/replay", ReplayEvent)
	if rr.Code != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
	}
}
