package notifier

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// SSEClient represents a single specific server-sent event connection
type SSEClient struct {
	GenericClient
	w    http.ResponseWriter
	done <-chan struct{}
}

// BuildSSEClient build and returns a new SSEClient
func BuildSSEClient(w http.ResponseWriter, done <-chan struct{}) *SSEClient {
	return &SSEClient{
		GenericClient: GenericClient{
			ID:   uuid.New().String(),
			Send: make(chan []byte, 1),
		},
		w:    w,
		done: done,
	}
}

// Write streams every queued message in SSE format until the request context is done
func (c *SSEClient) Write() {
	flusher, ok := c.w.(http.Flusher)
	if !ok {
		http.Error(c.w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	for {
		select {
		case message := <-c.Send:
			// SSE compatible format for javascript EventSource() ("data: <content>\n\n")
			fmt.Fprintf(c.w, "data: %s\n\n", message)
			flusher.Flush()
		case <-c.done:
			return
		}
	}
}

func (c *SSEClient) Read() {}
