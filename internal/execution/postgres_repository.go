package execution

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const table = "execution_records_v1"

// PostgresRepository is a repository containing the execution records based on
// a PSQL database and implementing the repository interface
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

// Create appends a new execution record
func (r *PostgresRepository) Create(record Record) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.TriggeredAt.IsZero() {
		record.TriggeredAt = time.Now().UTC()
	}

	actions, err := json.Marshal(record.ActionsExecuted)
	if err != nil {
		return "", fmt.Errorf("failed to marshal actions executed: %w", err)
	}
	snapshot, err := json.Marshal(record.MetricsSnapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metrics snapshot: %w", err)
	}

	query := `INSERT INTO execution_records_v1 (id, rule_id, rule_name, subject_id, triggered_at, actions_executed, metrics_snapshot)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.conn.Exec(query, record.ID, record.RuleID, record.RuleName, record.SubjectID,
		record.TriggeredAt, string(actions), string(snapshot))
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// Get search and returns an execution record by its id
func (r *PostgresRepository) Get(id string) (Record, bool, error) {
	query := `select id, rule_id, rule_name, subject_id, triggered_at, actions_executed, metrics_snapshot
			  from execution_records_v1 where id = $1`
	rows, err := r.conn.Query(query, id)
	if err != nil {
		return Record{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return Record{}, false, nil
	}
	record, err := scanRecord(rows)
	if err != nil {
		return Record{}, false, err
	}
	return record, true, nil
}

// List returns a deterministic reverse-chronological page of records matching the filter
func (r *PostgresRepository) List(filter Filter, limit int, offset int) ([]Record, error) {
	q := r.newStatement().
		Select("id", "rule_id", "rule_name", "subject_id", "triggered_at", "actions_executed", "metrics_snapshot").
		From(table).
		OrderBy("triggered_at desc", "id desc")
	if filter.RuleID != 0 {
		q = q.Where(sq.Eq{"rule_id": filter.RuleID})
	}
	if filter.SubjectID != "" {
		q = q.Where(sq.Eq{"subject_id": filter.SubjectID})
	}
	if !filter.From.IsZero() {
		q = q.Where(sq.GtOrEq{"triggered_at": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(sq.Lt{"triggered_at": filter.To})
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

	records := make([]Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountByRule returns the number of records referencing the input rule
func (r *PostgresRepository) CountByRule(ruleID int64) (int64, error) {
	var count int64
	query := `select count(*) from execution_records_v1 where rule_id = $1`
	err := r.conn.QueryRow(query, ruleID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// LastByRule returns the most recent trigger time of the input rule
func (r *PostgresRepository) LastByRule(ruleID int64) (time.Time, bool, error) {
	var last time.Time
	query := `select max(triggered_at) from execution_records_v1 where rule_id = $1 having max(triggered_at) is not null`
	err := r.conn.QueryRow(query, ruleID).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return last, true, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var record Record
	var actions string
	var snapshot sql.NullString

	err := rows.Scan(&record.ID, &record.RuleID, &record.RuleName, &record.SubjectID,
		&record.TriggeredAt, &actions, &snapshot)
	if err != nil {
		return Record{}, err
	}
	if err = json.Unmarshal([]byte(actions), &record.ActionsExecuted); err != nil {
		return Record{}, fmt.Errorf("malformed actions executed (id %s): %w", record.ID, err)
	}
	if snapshot.Valid && snapshot.String != "" {
		if err = json.Unmarshal([]byte(snapshot.String), &record.MetricsSnapshot); err != nil {
			return Record{}, fmt.Errorf("malformed metrics snapshot (id %s): %w", record.ID, err)
		}
	}
	return record, nil
}
