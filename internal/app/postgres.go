package app

import (
	"fmt"
	"sync"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/migrations"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	_globalDBMu sync.RWMutex
	_globalDB   *sqlx.DB
)

// DB is used to access the global postgresql connection pool singleton
func DB() *sqlx.DB {
	_globalDBMu.RLock()
	defer _globalDBMu.RUnlock()

	db := _globalDB
	return db
}

// ReplaceDBGlobals affect a new connection pool to the global singleton
func ReplaceDBGlobals(db *sqlx.DB) func() {
	_globalDBMu.Lock()
	defer _globalDBMu.Unlock()

	prev := _globalDB
	_globalDB = db
	return func() { ReplaceDBGlobals(prev) }
}

func initPostgres() {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		viper.GetString("POSTGRESQL_HOSTNAME"),
		viper.GetString("POSTGRESQL_PORT"),
		viper.GetString("POSTGRESQL_USERNAME"),
		viper.GetString("POSTGRESQL_PASSWORD"),
		viper.GetString("POSTGRESQL_DBNAME"),
	)
	dbClient, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		zap.L().Fatal("main.DbConnection:", zap.Error(err))
	}
	dbClient.SetMaxOpenConns(viper.GetInt("POSTGRESQL_CONN_POOL_MAX_OPEN"))
	dbClient.SetMaxIdleConns(viper.GetInt("POSTGRESQL_CONN_POOL_MAX_IDLE"))
	dbClient.SetConnMaxLifetime(viper.GetDuration("POSTGRESQL_CONN_MAX_LIFETIME"))
	ReplaceDBGlobals(dbClient)

	if viper.GetBool("POSTGRESQL_MIGRATION_ON_STARTUP") {
		if err := migrations.Migrate(dbClient.DB); err != nil {
			zap.L().Fatal("Applying migrations", zap.Error(err))
		}
	}
}
