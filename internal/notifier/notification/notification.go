package notification

import (
	"encoding/json"
	"errors"
	"time"
)

// Notification levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is a message pushed to the dashboards (and kept in history)
// when an automation action or the engine itself wants operator attention
type Notification struct {
	ID        int64                  `json:"id"`
	Type      string                 `json:"type"`
	Level     string                 `json:"level"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	IsRead    bool                   `json:"is_read"`
}

// IsValid checks if a notification definition is valid and has no missing mandatory fields
func (n *Notification) IsValid() (bool, error) {
	if n.Type == "" {
		return false, errors.New("missing Type")
	}
	if n.Title == "" {
		return false, errors.New("missing Title")
	}
	return true, nil
}

// ToBytes convert a notification in a json byte slice to be sent through any broadcast
func (n *Notification) ToBytes() ([]byte, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return b, nil
}
