package cooldown

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresTracker is an implementation of the cooldown tracker backed by a
// PSQL table keyed on (rule_id, subject_id)
type PostgresTracker struct {
	conn *sqlx.DB
}

// NewPostgresTracker returns a new instance of PostgresTracker
func NewPostgresTracker(dbClient *sqlx.DB) Tracker {
	t := PostgresTracker{
		conn: dbClient,
	}
	var tracker Tracker = &t
	return tracker
}

// TryAcquire performs the acquisition as a single conditional upsert, which
// serializes concurrent callers for the same pair on the row lock
func (t *PostgresTracker) TryAcquire(ruleID int64, subjectID string, cooldown time.Duration) (bool, error) {
	now := time.Now().UTC()
	query := `INSERT INTO rule_cooldowns_v1 (rule_id, subject_id, last_triggered)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (rule_id, subject_id)
			  DO UPDATE SET last_triggered = $3
			  WHERE rule_cooldowns_v1.last_triggered <= $4
			  RETURNING last_triggered`
	row := t.conn.QueryRow(query, ruleID, subjectID, now, now.Add(-cooldown))

	var lastTriggered time.Time
	err := row.Scan(&lastTriggered)
	if err == sql.ErrNoRows {
		// upsert filtered out: the window has not elapsed
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LastTriggered returns the last acquisition time for a (rule, subject) pair
func (t *PostgresTracker) LastTriggered(ruleID int64, subjectID string) (time.Time, bool, error) {
	query := `select last_triggered from rule_cooldowns_v1 where rule_id = $1 and subject_id = $2`
	var lastTriggered time.Time
	err := t.conn.QueryRow(query, ruleID, subjectID).Scan(&lastTriggered)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return lastTriggered, true, nil
}
