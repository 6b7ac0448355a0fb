package rule

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresRepository is a repository containing the automation rules based on a
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

// CheckByName returns if at least one row exists with the input rule name
func (r *PostgresRepository) CheckByName(name string) (bool, error) {
	var exists bool
	checkNameQuery := `select exists(select 1 from automation_rules_v1 where name = $1) AS "exists"`
	err := r.conn.QueryRow(checkNameQuery, name).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	return exists, nil
}

// Create creates a new Rule in the repository
func (r *PostgresRepository) Create(rule Rule) (int64, error) {
	t := time.Now().Truncate(1 * time.Millisecond).UTC()

	definition, err := json.Marshal(rule)
	if err != nil {
		return -1, fmt.Errorf("failed to marshal rule %s: %w", rule.Name, err)
	}

	query := `INSERT INTO automation_rules_v1(name, definition, is_active, last_modified)
			  VALUES ($1, $2, $3, $4) RETURNING id`
	var ruleID int64
	err = r.conn.QueryRow(query, rule.Name, string(definition), rule.IsActive, t).Scan(&ruleID)
	if err != nil {
		return -1, err
	}
	return ruleID, nil
}

// Get search and returns a rule from the repository by its id
func (r *PostgresRepository) Get(id int64) (Rule, bool, error) {
	query := `select id, definition, is_active from automation_rules_v1 where id = $1`
	return r.scanOne(r.conn.QueryRow(query, id))
}

// GetByName search and returns a rule from the repository by its name
func (r *PostgresRepository) GetByName(name string) (Rule, bool, error) {
	query := `select id, definition, is_active from automation_rules_v1 where name = $1`
	return r.scanOne(r.conn.QueryRow(query, name))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (Rule, bool, error) {
	var id int64
	var definition string
	var isActive bool
	err := row.Scan(&id, &definition, &isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return Rule{}, false, nil
		}
		return Rule{}, false, err
	}
	var rule Rule
	if err = json.Unmarshal([]byte(definition), &rule); err != nil {
		return Rule{}, false, fmt.Errorf("malformed rule definition: %w", err)
	}
	rule.ID = id
	rule.IsActive = isActive
	return rule, true, nil
}

// Update updates a rule in the repository, preserving its activation state
func (r *PostgresRepository) Update(rule Rule) error {
	t := time.Now().Truncate(1 * time.Millisecond).UTC()

	definition, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to marshal rule %s: %w", rule.Name, err)
	}

	query := `UPDATE automation_rules_v1 SET name = $1, definition = $2, last_modified = $3 WHERE id = $4`
	res, err := r.conn.Exec(query, rule.Name, string(definition), t, rule.ID)
	if err != nil {
		return err
	}
	return checkRowAffected(res, 1)
}

// SetActive toggles the activation state of a rule without touching its definition
func (r *PostgresRepository) SetActive(id int64, active bool) error {
	t := time.Now().Truncate(1 * time.Millisecond).UTC()
	query := `UPDATE automation_rules_v1 SET is_active = $1, last_modified = $2 WHERE id = $3`
	res, err := r.conn.Exec(query, active, t, id)
	if err != nil {
		return err
	}
	return checkRowAffected(res, 1)
}

// Delete deletes a rule from the repository by its id
func (r *PostgresRepository) Delete(id int64) error {
	query := `DELETE FROM automation_rules_v1 WHERE id = $1`
	res, err := r.conn.Exec(query, id)
	if err != nil {
		return err
	}
	return checkRowAffected(res, 1)
}

// GetAll returns all rules in the repository
func (r *PostgresRepository) GetAll() (map[int64]Rule, error) {
	query := `select id, definition, is_active from automation_rules_v1`
	return r.scanAll(query)
}

// GetAllActive returns all active rules in the repository
func (r *PostgresRepository) GetAllActive() (map[int64]Rule, error) {
	query := `select id, definition, is_active from automation_rules_v1 where is_active = true`
	return r.scanAll(query)
}

func (r *PostgresRepository) scanAll(query string) (map[int64]Rule, error) {
	rows, err := r.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make(map[int64]Rule)
	for rows.Next() {
		var id int64
		var definition string
		var isActive bool
		if err = rows.Scan(&id, &definition, &isActive); err != nil {
			return nil, err
		}
		var rule Rule
		if err = json.Unmarshal([]byte(definition), &rule); err != nil {
			return nil, fmt.Errorf("malformed rule definition (id %d): %w", id, err)
		}
		rule.ID = id
		rule.IsActive = isActive
		rules[id] = rule
	}
	return rules, rows.Err()
}

// GetMatching returns all active rules whose trigger pattern applies to the
// input event type. Pattern semantics are evaluated in Go since hierarchical
// prefixes are not expressible as a plain SQL predicate.
func (r *PostgresRepository) GetMatching(eventType string) ([]Rule, error) {
	actives, err := r.GetAllActive()
	if err != nil {
		return nil, err
	}
	matching := make([]Rule, 0)
	for _, rule := range actives {
		if rule.Matches(eventType) {
			matching = append(matching, rule)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })
	return matching, nil
}

// CountByState returns the number of active rules and the total number of rules
func (r *PostgresRepository) CountByState() (int64, int64, error) {
	var active, total int64
	query := `select count(*) filter (where is_active), count(*) from automation_rules_v1`
	err := r.conn.QueryRow(query).Scan(&active, &total)
	if err != nil {
		return 0, 0, err
	}
	return active, total, nil
}

func checkRowAffected(res sql.Result, nbRows int64) error {
	i, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if i != nbRows {
		return errors.New("no row affected (or multiple row affected) instead of 1 row")
	}
	return nil
}
