package event

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const table = "automation_events_v1"

// PostgresRepository is a repository containing the event ledger based on a
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

func (r *PostgresRepository) newStatement() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Create appends a new event to the ledger with status pending
func (r *PostgresRepository) Create(event Event) (string, error) {
	if valid, err := event.IsValid(); !valid {
		return "", err
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Status = StatusPending

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `INSERT INTO automation_events_v1 (id, event_type, source_entity, source_id, subject_id, payload, ts, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.conn.Exec(query, event.ID, event.EventType, event.SourceEntity, event.SourceID,
		event.SubjectID, string(payload), event.Timestamp, event.Status)
	if err != nil {
		return "", err
	}
	return event.ID, nil
}

// Get search and returns an event from the ledger by its id
func (r *PostgresRepository) Get(id string) (Event, bool, error) {
	query := `select id, event_type, source_entity, source_id, subject_id, payload, ts, status,
			  actions_triggered, action_results, error_message
			  from automation_events_v1 where id = $1`
	rows, err := r.conn.Query(query, id)
	if err != nil {
		return Event{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return Event{}, false, nil
	}
	event, err := scanEvent(rows)
	if err != nil {
		return Event{}, false, err
	}
	return event, true, nil
}

// List returns a deterministic reverse-chronological page of events matching the filter
func (r *PostgresRepository) List(filter Filter, limit int, offset int) ([]Event, error) {
	q := r.newStatement().
		Select("id", "event_type", "source_entity", "source_id", "subject_id", "payload",
			"ts", "status", "actions_triggered", "action_results", "error_message").
		From(table).
		OrderBy("ts desc", "id desc")
	if filter.EventType != "" {
		q = q.Where(sq.Eq{"event_type": filter.EventType})
	}
	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}
	if !filter.From.IsZero() {
		q = q.Where(sq.GtOrEq{"ts": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(sq.Lt{"ts": filter.To})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// MarkProcessing transitions an event from pending to processing
func (r *PostgresRepository) MarkProcessing(id string) error {
	return r.transition(id, StatusProcessing, []string{StatusPending}, func(q sq.UpdateBuilder) sq.UpdateBuilder {
		return q
	})
}

// MarkCompleted transitions an event from pending/processing to completed,
// recording the aggregated action results exactly once
func (r *PostgresRepository) MarkCompleted(id string, actionsTriggered []string, actionResults map[string]interface{}) error {
	results, err := json.Marshal(actionResults)
	if err != nil {
		return fmt.Errorf("failed to marshal action results: %w", err)
	}
	return r.transition(id, StatusCompleted, []string{StatusPending, StatusProcessing}, func(q sq.UpdateBuilder) sq.UpdateBuilder {
		return q.Set("actions_triggered", pq.Array(actionsTriggered)).
			Set("action_results", string(results))
	})
}

// MarkFailed transitions an event from pending/processing to failed
func (r *PostgresRepository) MarkFailed(id string, errorMessage string) error {
	return r.transition(id, StatusFailed, []string{StatusPending, StatusProcessing}, func(q sq.UpdateBuilder) sq.UpdateBuilder {
		return q.Set("error_message", errorMessage)
	})
}

// Requeue puts a non-pending event back in pending state for replay
func (r *PostgresRepository) Requeue(id string) error {
	return r.transition(id, StatusPending, []string{StatusProcessing, StatusCompleted, StatusFailed},
		func(q sq.UpdateBuilder) sq.UpdateBuilder {
			return q.Set("error_message", "")
		})
}

func (r *PostgresRepository) transition(id string, to string, from []string, with func(sq.UpdateBuilder) sq.UpdateBuilder) error {
	q := r.newStatement().
		Update(table).
		Set("status", to).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": from})
	q = with(q)

	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	res, err := r.conn.Exec(query, args...)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count != 1 {
		current, found, err := r.Get(id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("event %s not found", id)
		}
		return invalidTransition(id, current.Status, to)
	}
	return nil
}

// ListStuckProcessing returns events left in processing for longer than the
// input duration. A zero duration returns every processing event.
func (r *PostgresRepository) ListStuckProcessing(olderThan time.Duration) ([]Event, error) {
	filter := Filter{Status: StatusProcessing}
	if olderThan > 0 {
		filter.To = time.Now().UTC().Add(-olderThan)
	}
	return r.List(filter, 0, 0)
}

// CountStats computes the aggregate ledger statistics consumed by the dashboards
func (r *PostgresRepository) CountStats() (Stats, error) {
	stats := Stats{
		ByType:   make(map[string]int64),
		ByStatus: make(map[string]int64),
	}

	query, args, err := r.newStatement().
		Select("count(*)", "count(*) filter (where ts >= $1)").
		From(table).
		ToSql()
	if err != nil {
		return stats, err
	}
	args = append(args, time.Now().UTC().Add(-24*time.Hour))
	if err = r.conn.QueryRow(query, args...).Scan(&stats.TotalEvents, &stats.EventsLast24h); err != nil {
		return stats, err
	}

	if err = r.countGroup("event_type", stats.ByType); err != nil {
		return stats, err
	}
	if err = r.countGroup("status", stats.ByStatus); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *PostgresRepository) countGroup(column string, out map[string]int64) error {
	query, args, err := r.newStatement().
		Select(column, "count(*)").
		From(table).
		GroupBy(column).
		ToSql()
	if err != nil {
		return err
	}
	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err = rows.Scan(&key, &count); err != nil {
			return err
		}
		out[key] = count
	}
	return rows.Err()
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var event Event
	var sourceID sql.NullString
	var payload sql.NullString
	var actionResults sql.NullString
	var errorMessage sql.NullString
	var actionsTriggered pq.StringArray

	err := rows.Scan(&event.ID, &event.EventType, &event.SourceEntity, &sourceID, &event.SubjectID,
		&payload, &event.Timestamp, &event.Status, &actionsTriggered, &actionResults, &errorMessage)
	if err != nil {
		return Event{}, err
	}
	event.SourceID = sourceID.String
	event.ErrorMessage = errorMessage.String
	event.ActionsTriggered = actionsTriggered
	if payload.Valid && payload.String != "" {
		if err = json.Unmarshal([]byte(payload.String), &event.Payload); err != nil {
			return Event{}, fmt.Errorf("malformed event payload (id %s): %w", event.ID, err)
		}
	}
	if actionResults.Valid && actionResults.String != "" {
		if err = json.Unmarshal([]byte(actionResults.String), &event.ActionResults); err != nil {
			return Event{}, fmt.Errorf("malformed action results (id %s): %w", event.ID, err)
		}
	}
	return event, nil
}
