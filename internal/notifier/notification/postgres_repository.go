package notification

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresRepository is a repository containing the notification history based
// on a PSQL database and implementing the repository interface
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

// Create creates a new notification in the repository
func (r *PostgresRepository) Create(notification Notification) (int64, error) {
	if valid, err := notification.IsValid(); !valid {
		return -1, err
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	context, err := json.Marshal(notification.Context)
	if err != nil {
		return -1, fmt.Errorf("failed to marshal notification context: %w", err)
	}

	query := `INSERT INTO notifications_v1 (type, level, title, message, context, created_at, is_read)
			  VALUES ($1, $2, $3, $4, $5, $6, false) RETURNING id`
	var id int64
	err = r.conn.QueryRow(query, notification.Type, notification.Level, notification.Title,
		notification.Message, string(context), notification.CreatedAt).Scan(&id)
	if err != nil {
		return -1, err
	}
	return id, nil
}

// Get search and returns a notification from the repository by its id
func (r *PostgresRepository) Get(id int64) (Notification, bool, error) {
	query := `select id, type, level, title, message, context, created_at, is_read
			  from notifications_v1 where id = $1`
	rows, err := r.conn.Query(query, id)
	if err != nil {
		return Notification{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return Notification{}, false, nil
	}
	notification, err := scanNotification(rows)
	if err != nil {
		return Notification{}, false, err
	}
	return notification, true, nil
}

// GetAll returns a page of notifications, newest first
func (r *PostgresRepository) GetAll(limit int, offset int) ([]Notification, error) {
	query := `select id, type, level, title, message, context, created_at, is_read
			  from notifications_v1 order by created_at desc, id desc limit $1 offset $2`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}

// MarkRead flags a notification as read
func (r *PostgresRepository) MarkRead(id int64) error {
	query := `UPDATE notifications_v1 SET is_read = true WHERE id = $1`
	res, err := r.conn.Exec(query, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count != 1 {
		return errors.New("notification not found")
	}
	return nil
}

// DeleteOlderThan removes notifications past their lifetime and returns the removed count
func (r *PostgresRepository) DeleteOlderThan(lifetime time.Duration) (int64, error) {
	query := `DELETE FROM notifications_v1 WHERE created_at < $1`
	res, err := r.conn.Exec(query, time.Now().UTC().Add(-lifetime))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNotification(rows *sql.Rows) (Notification, error) {
	var notification Notification
	var context sql.NullString
	err := rows.Scan(&notification.ID, &notification.Type, &notification.Level, &notification.Title,
		&notification.Message, &context, &notification.CreatedAt, &notification.IsRead)
	if err != nil {
		return Notification{}, err
	}
	if context.Valid && context.String != "" {
		if err = json.Unmarshal([]byte(context.String), &notification.Context); err != nil {
			return Notification{}, fmt.Errorf("malformed notification context (id %d): %w", notification.ID, err)
		}
	}
	return notification, nil
}
