package task

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresRepository is a repository containing the follow-up tasks based on a
// PSQL database and implementing the repository interface
type PostgresRepository struct {
	conn *sqlx.DB
}

// NewPostgresRepository returns a new instance of PostgresRepository
func NewPostgresRepository(dbClient *sqlx.DB) Repository {
	r := PostgresRepository{
		conn: dbClient,
	}
	var repo Repository = &r
	return repo
}

// Create creates a new task in the repository
func (r *PostgresRepository) Create(task Task) (int64, error) {
	if valid, err := task.IsValid(); !valid {
		return -1, err
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO tasks_v1 (subject_id, title, details, rule_id, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int64
	err := r.conn.QueryRow(query, task.SubjectID, task.Title, task.Details, task.RuleID,
		StatusOpen, task.CreatedAt).Scan(&id)
	if err != nil {
		return -1, err
	}
	return id, nil
}

// Get search and returns a task from the repository by its id
func (r *PostgresRepository) Get(id int64) (Task, bool, error) {
	query := `select id, subject_id, title, details, rule_id, status, created_at from tasks_v1 where id = $1`
	var task Task
	err := r.conn.QueryRow(query, id).Scan(&task.ID, &task.SubjectID, &task.Title,
		&task.Details, &task.RuleID, &task.Status, &task.CreatedAt)
	if err == sql.ErrNoRows {
		return Task{}, false, nil
	}
	if err != nil {
		return Task{}, false, err
	}
	return task, true, nil
}

// GetAllBySubject returns all tasks of a subject, newest first
func (r *PostgresRepository) GetAllBySubject(subjectID string) ([]Task, error) {
	query := `select id, subject_id, title, details, rule_id, status, created_at
			  from tasks_v1 where subject_id = $1 order by created_at desc, id desc`
	rows, err := r.conn.Query(query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		var task Task
		if err = rows.Scan(&task.ID, &task.SubjectID, &task.Title, &task.Details,
			&task.RuleID, &task.Status, &task.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// SetStatus updates the status of a task
func (r *PostgresRepository) SetStatus(id int64, status string) error {
	query := `UPDATE tasks_v1 SET status = $1 WHERE id = $2`
	res, err := r.conn.Exec(query, status, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count != 1 {
		return errors.New("task not found")
	}
	return nil
}
