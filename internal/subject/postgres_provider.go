package subject

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresProvider reads creator attribute snapshots from the
// creator_attributes_v1 table (one jsonb document per creator)
type PostgresProvider struct {
	conn *sqlx.DB
}

// NewPostgresProvider returns a new instance of PostgresProvider
func NewPostgresProvider(dbClient *sqlx.DB) Provider {
	p := PostgresProvider{
		conn: dbClient,
	}
	var provider Provider = &p
	return provider
}

// GetSnapshot returns the current attributes of a creator. An unknown creator
// yields an empty snapshot, which makes every leaf condition evaluate to false.
func (p *PostgresProvider) GetSnapshot(subjectID string) (map[string]interface{}, error) {
	query := `select attributes from creator_attributes_v1 where creator_id = $1`
	var attributes string
	err := p.conn.QueryRow(query, subjectID).Scan(&attributes)
	if err == sql.ErrNoRows {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]interface{})
	if err = json.Unmarshal([]byte(attributes), &snapshot); err != nil {
		return nil, fmt.Errorf("malformed attributes for creator %s: %w", subjectID, err)
	}
	return snapshot, nil
}
