package tests

import (
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DBClient returns a postgresql test client for integration tests, targeting
// localhost by default or the POSTGRES_HOST environment variable in CI
func DBClient(t *testing.T) *sqlx.DB {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	dsn := fmt.Sprintf("host=%s port=5432 user=postgres password=postgres dbname=postgres sslmode=disable", host)
	dbClient, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	return dbClient
}

// DBExec execute an sql query which can lead to an immediate failure of the unit test
func DBExec(dbClient *sqlx.DB, query string, t *testing.T, failNow bool) {
	_, err := dbClient.Exec(query)
	if err != nil {
		t.Error(err)
		if failNow {
			t.FailNow()
		}
	}
}
