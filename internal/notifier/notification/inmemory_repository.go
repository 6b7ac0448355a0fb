package notification

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an implementation of the notification repository backed
// by a plain map, used for tests and standalone runs without a database
type InMemoryRepository struct {
	mutex         sync.RWMutex
	notifications map[int64]Notification
	nextID        int64
}

// NewInMemoryRepository returns a new instance of InMemoryRepository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		notifications: make(map[int64]Notification),
		nextID:        1,
	}
}

// Create creates a new notification in the repository
func (r *InMemoryRepository) Create(notification Notification) (int64, error) {
	if valid, err := notification.IsValid(); !valid {
		return -1, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	notification.ID = r.nextID
	r.nextID++
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	r.notifications[notification.ID] = notification
	return notification.ID, nil
}

// Get search and returns a notification from the repository by its id
func (r *InMemoryRepository) Get(id int64) (Notification, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	notification, ok := r.notifications[id]
	return notification, ok, nil
}

// GetAll returns a page of notifications, newest first
func (r *InMemoryRepository) GetAll(limit int, offset int) ([]Notification, error) {
	r.mutex.RLock()
	notifications := make([]Notification, 0, len(r.notifications))
	for _, notification := range r.notifications {
		notifications = append(notifications, notification)
	}
	r.mutex.RUnlock()

	sort.Slice(notifications, func(i, j int) bool {
		if !notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
		}
		return notifications[i].ID > notifications[j].ID
	})

	if offset > 0 {
		if offset >= len(notifications) {
			return []Notification{}, nil
		}
		notifications = notifications[offset:]
	}
	if limit > 0 && limit < len(notifications) {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

// MarkRead flags a notification as read
func (r *InMemoryRepository) MarkRead(id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	notification, ok := r.notifications[id]
	if !ok {
		return errors.New("notification not found")
	}
	notification.IsRead = true
	r.notifications[id] = notification
	return nil
}

// DeleteOlderThan removes notifications past their lifetime and returns the removed count
func (r *InMemoryRepository) DeleteOlderThan(lifetime time.Duration) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	cutoff := time.Now().UTC().Add(-lifetime)
	var removed int64
	for id, notification := range r.notifications {
		if notification.CreatedAt.Before(cutoff) {
			delete(r.notifications, id)
			removed++
		}
	}
	return removed, nil
}
