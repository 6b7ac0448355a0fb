package handlers

import (
	"net/http"
	"strconv"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/handlers/render"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier/notification"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GetNotifications returns the persisted dashboard notifications
func GetNotifications(w http.ResponseWriter, r *http.Request) {
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

	notifications, err := notification.R().GetAll(limit, offset)
	if err != nil {
		zap.L().Error("Error getting notifications", zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	render.JSON(w, r, notifications)
}

// UpdateRead marks a notification as read
func UpdateRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idNotification, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		zap.L().Warn("Parsing notification id", zap.String("NotificationID", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}

	err = notification.R().MarkRead(idNotification)
	if err != nil {
		zap.L().Error("Mark notification read", zap.Int64("id", idNotification), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBUpdateFailed, err)
		return
	}

	render.OK(w, r)
}

// NotificationsWSRegister registers a new websocket client to the notifications stream
func NotificationsWSRegister(w http.ResponseWriter, r *http.Request) {
	zap.L().Info("New connection on /ws")

	client, err := notifier.BuildWebsocketClient(w, r)
	if err != nil {
		zap.L().Error("Build new WS Client", zap.Error(err))
		return
	}

	err = notifier.C().Register(client)
	if err != nil {
		zap.L().Error("Add new WS Client to manager", zap.Error(err))
		return
	}
	go client.Write()
	go client.Read()
}

// NotificationsSSERegister registers a new SSE client to the notifications stream
func NotificationsSSERegister(w http.ResponseWriter, r *http.Request) {
	zap.L().Info("New connection on /sse")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := notifier.BuildSSEClient(w, r.Context().Done())

	err := notifier.C().Register(client)
	if err != nil {
		zap.L().Error("Add new SSE Client to manager", zap.Error(err))
		return
	}
	defer func() {
		if err := notifier.C().Unregister(client); err != nil {
			zap.L().Warn("Unregister notifier client", zap.Error(err))
		}
	}()

	client.Write()
}
