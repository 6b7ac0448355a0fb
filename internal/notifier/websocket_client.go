package notifier

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebsocketClient structure represents a specific websocket connection, used by the manager
type WebsocketClient struct {
	GenericClient
	Socket *websocket.Conn
}

var upgrader = &websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// BuildWebsocketClient renders a new client after getting a new connection established
func BuildWebsocketClient(w http.ResponseWriter, r *http.Request) (*WebsocketClient, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &WebsocketClient{
		GenericClient: GenericClient{
			ID:   uuid.New().String(),
			Send: make(chan []byte, 1),
		},
		Socket: conn,
	}, nil
}

// Write a message on a client socket
func (c *WebsocketClient) Write() {
	ticker := time.NewTicker(10 * time.Second)

	defer func() {
		ticker.Stop()
		destroyWebsocketClient(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Socket.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			// Send the Ping and return to close conn whether an error occurs
			if err := c.Socket.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

// Read drains the client socket until it closes
func (c *WebsocketClient) Read() {
	defer func() {
		destroyWebsocketClient(c)
	}()

	for {
		_, _, err := c.Socket.ReadMessage()
		if err != nil {
			var closeError *websocket.CloseError
			switch {
			case errors.As(err, &closeError):
				if closeError.Code != websocket.CloseNormalClosure && closeError.Code != websocket.CloseGoingAway {
					zap.L().Error("Read socket", zap.Error(err))
				}
			default:
				zap.L().Error("Read socket", zap.Error(err))
			}
			break
		}
	}
}

func destroyWebsocketClient(c *WebsocketClient) {
	if notifier := C(); notifier != nil {
		notifier.Unregister(c)
	}
	c.Socket.Close()
}
