package notifier

import (
	"sync"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier/notification"
	"go.uber.org/zap"
)

var (
	_globalNotifierMu sync.RWMutex
	_globalNotifier   *Notifier
)

// C is used to access the global notifier singleton
func C() *Notifier {
	_globalNotifierMu.RLock()
	defer _globalNotifierMu.RUnlock()

	notifier := _globalNotifier
	return notifier
}

// ReplaceGlobals affect a new notifier to the global notifier singleton
func ReplaceGlobals(notifier *Notifier) func() {
	_globalNotifierMu.Lock()
	defer _globalNotifierMu.Unlock()

	prev := _globalNotifier
	_globalNotifier = notifier
	return func() { ReplaceGlobals(prev) }
}

// Notifier is the main struct used to send notifications
type Notifier struct {
	clientManager *ClientManager
}

// NewNotifier returns a pointer to a new instance of Notifier
func NewNotifier() *Notifier {
	cm := NewClientManager()
	return &Notifier{
		clientManager: cm,
	}
}

// Register add a new client to the client manager pool
func (notifier *Notifier) Register(client Client) error {
	zap.L().Info("Notifier client registered")
	return notifier.clientManager.Register(client)
}

// Unregister disconnect an existing client from the client manager pool
func (notifier *Notifier) Unregister(client Client) error {
	zap.L().Info("Notifier client unregistered")
	return notifier.clientManager.Unregister(client)
}

// Broadcast persists a notification and sends it to every connected client
func (notifier *Notifier) Broadcast(notif notification.Notification) {
	id, err := notification.R().Create(notif)
	if err != nil {
		zap.L().Error("Add notification to history", zap.Error(err))
		return
	}
	notif.ID = id

	message, err := notif.ToBytes()
	if err != nil {
		zap.L().Error("notification.ToBytes()", zap.Error(err))
		return
	}

	for _, client := range notifier.clientManager.GetClients() {
		notifier.send(message, client)
	}
}

// send a raw byte slice to a specific client, dropping the message if the
// client send buffer is saturated
func (notifier *Notifier) send(message []byte, client Client) {
	select {
	case client.GetSendChannel() <- message:
	default:
		zap.L().Warn("Notifier client send buffer full, message dropped")
	}
}
