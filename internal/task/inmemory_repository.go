package task

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an implementation of the task repository backed by a
// plain map, used for tests and standalone runs without a database
type InMemoryRepository struct {
	mutex  sync.RWMutex
	tasks  map[int64]Task
	nextID int64
}

// NewInMemoryRepository returns a new instance of InMemoryRepository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tasks:  make(map[int64]Task),
		nextID: 1,
	}
}

// Create creates a new task in the repository
func (r *InMemoryRepository) Create(task Task) (int64, error) {
	if valid, err := task.IsValid(); !valid {
		return -1, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	task.ID = r.nextID
	r.nextID++
	task.Status = StatusOpen
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	r.tasks[task.ID] = task
	return task.ID, nil
}

// Get search and returns a task from the repository by its id
func (r *InMemoryRepository) Get(id int64) (Task, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	task, ok := r.tasks[id]
	return task, ok, nil
}

// GetAllBySubject returns all tasks of a subject, newest first
func (r *InMemoryRepository) GetAllBySubject(subjectID string) ([]Task, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	tasks := make([]Task, 0)
	for _, task := range r.tasks {
		if task.SubjectID == subjectID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

// SetStatus updates the status of a task
func (r *InMemoryRepository) SetStatus(id int64, status string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return errors.New("task not found")
	}
	task.Status = status
	r.tasks[id] = task
	return nil
}
