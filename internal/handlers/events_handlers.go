package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/engine"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/handlers/render"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PostEvent appends a new event to the ledger and queues it for processing.
// A full engine queue is not an error for the producer: the event stays
// pending and is picked up by the maintenance jobs.
func PostEvent(w http.ResponseWriter, r *http.Request) {
	var newEvent event.Event
	err := json.NewDecoder(r.Body).Decode(&newEvent)
	if err != nil {
		zap.L().Warn("Event json decode", zap.Error(err))
		render.Error(w, r, render.ErrAPIDecodeJSONBody, err)
		return
	}

	if ok, err := newEvent.IsValid(); !ok {
		zap.L().Warn("Event is invalid", zap.Error(err))
		render.Error(w, r, render.ErrAPIResourceInvalid, err)
		return
	}

	id, err := event.R().Create(newEvent)
	if err != nil {
		zap.L().Error("Create event", zap.Error(err))
		render.Error(w, r, render.ErrAPIDBInsertFailed, err)
		return
	}

	if err := engine.E().Queue(id); err != nil {
		zap.L().Warn("Event left pending", zap.String("id", id), zap.Error(err))
	}

	created, _, err := event.R().Get(id)
	if err != nil {
		zap.L().Error("Get event after creation", zap.String("id", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	render.Created(w, r, created)
}

// GetEvents returns a reverse-chronological page of the ledger
func GetEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := QueryParamToOptionalInt(r, "limit", 50)
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}
	offset, err := QueryParamToOptionalInt(r, "offset", 0)
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}
	from, err := QueryParamToOptionalTime(r, "from", time.Time{})
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingDateTime, err)
		return
	}
	to, err := QueryParamToOptionalTime(r, "to", time.Time{})
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingDateTime, err)
		return
	}

	filter := event.Filter{
		EventType: r.URL.Query().Get("event_type"),
		Status:    r.URL.Query().Get("status"),
		From:      from,
		To:        to,
	}

	events, err := event.R().List(filter, limit, offset)
	if err != nil {
		zap.L().Error("List events", zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	render.JSON(w, r, events)
}

// GetEvent returns a single event by its id
func GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ev, found, err := event.R().Get(id)
	if err != nil {
		zap.L().Error("Get event from repository", zap.String("id", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	if !found {
		render.Error(w, r, render.ErrAPIDBResourceNotFound, errors.New("event does not exists"))
		return
	}

	render.JSON(w, r, ev)
}

// ReplayEvent requeues a terminal or stuck event under the same id. The
// cooldown acquisition makes the replay idempotent: already-dispatched rules
// are suppressed, not re-fired.
func ReplayEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	_, found, err := event.R().Get(id)
	if err != nil {
		zap.L().Error("Get event from repository", zap.String("id", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	if !found {
		render.Error(w, r, render.ErrAPIDBResourceNotFound, errors.New("event does not exists"))
		return
	}

	if err := event.R().Requeue(id); err != nil {
		if errors.Is(err, event.ErrInvalidTransition) {
			render.Error(w, r, render.ErrAPIResourceConflict, err)
			return
		}
		zap.L().Error("Requeue event", zap.String("id", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBUpdateFailed, err)
		return
	}

	if err := engine.E().Queue(id); err != nil {
		if errors.Is(err, engine.ErrQueueFull) {
			render.Error(w, r, render.ErrAPIQueueFull, err)
			return
		}
		zap.L().Error("Queue event", zap.String("id", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIProcessError, err)
		return
	}

	render.OK(w, r)
}
