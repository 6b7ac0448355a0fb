package app

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ConfigPath is the toml configuration file path
var ConfigPath = "config"

// ConfigName is the toml configuration file name
var ConfigName = "engine"

// EnvPrefix is the standard environment variable prefix
var EnvPrefix = "CREATORSHIVE"

// ConfigKey represents a single allowed configuration key with its default value
type ConfigKey struct {
	Name         string
	DefaultValue interface{}
	Description  string
}

// AllowedConfigKey list every allowed configuration key
var AllowedConfigKey = []ConfigKey{
	{Name: "LOGGER_PRODUCTION", DefaultValue: true, Description: "Enable structured JSON logging"},
	{Name: "SERVER_PORT", DefaultValue: 9000, Description: "Server port"},
	{Name: "API_ENABLE_CORS", DefaultValue: false, Description: "Run the api with CORS enabled"},
	{Name: "HTTP_SERVER_API_ENABLE_VERBOSE_ERROR", DefaultValue: false, Description: "Run the api with verbose error payloads"},
	{Name: "INSTANCE_NAME", DefaultValue: "creatorshive", Description: "Instance name"},

	{Name: "POSTGRESQL_HOSTNAME", DefaultValue: "localhost", Description: "PostgreSQL hostname"},
	{Name: "POSTGRESQL_PORT", DefaultValue: "5432", Description: "PostgreSQL port"},
	{Name: "POSTGRESQL_DBNAME", DefaultValue: "postgres", Description: "PostgreSQL database name"},
	{Name: "POSTGRESQL_USERNAME", DefaultValue: "postgres", Description: "PostgreSQL user"},
	{Name: "POSTGRESQL_PASSWORD", DefaultValue: "postgres", Description: "PostgreSQL pasword"},
	{Name: "POSTGRESQL_CONN_POOL_MAX_OPEN", DefaultValue: 6, Description: "PostgreSQL connection pool max open"},
	{Name: "POSTGRESQL_CONN_POOL_MAX_IDLE", DefaultValue: 3, Description: "PostgreSQL connection pool max idle"},
	{Name: "POSTGRESQL_CONN_MAX_LIFETIME", DefaultValue: "0", Description: "PostgreSQL connection max lifetime"},
	{Name: "POSTGRESQL_MIGRATION_ON_STARTUP", DefaultValue: true, Description: "Apply embedded SQL migrations on startup"},

	{Name: "ENGINE_QUEUE_BUFFER_SIZE", DefaultValue: 1000, Description: "Engine event queue capacity"},
	{Name: "ENGINE_WORKER_COUNT", DefaultValue: 4, Description: "Engine worker pool size"},
	{Name: "ENGINE_ACTION_TIMEOUT", DefaultValue: "30s", Description: "Per-action execution timeout"},

	{Name: "ENABLE_CRONS_ON_START", DefaultValue: true, Description: "Enable crons on startup"},
	{Name: "SCHEDULER_STUCK_EVENTS_CRON", DefaultValue: "@every 5m", Description: "Stuck processing events requeue schedule"},
	{Name: "SCHEDULER_STUCK_EVENTS_MAX_AGE", DefaultValue: "10m", Description: "Age after which a processing event is considered stuck"},
	{Name: "SCHEDULER_REPLAY_FAILED_CRON", DefaultValue: "", Description: "Failed events replay schedule (empty to disable)"},
	{Name: "SCHEDULER_REPLAY_FAILED_BATCH_SIZE", DefaultValue: 100, Description: "Failed events replayed per run"},
	{Name: "SCHEDULER_NOTIFICATIONS_PURGE_CRON", DefaultValue: "@daily", Description: "Expired notifications purge schedule"},
	{Name: "NOTIFICATION_LIFETIME", DefaultValue: "720h", Description: "Notification retention duration"},

	{Name: "SMTP_USERNAME", DefaultValue: "", Description: "SMTP username"},
	{Name: "SMTP_PASSWORD", DefaultValue: "", Description: "SMTP password"},
	{Name: "SMTP_HOST", DefaultValue: "localhost", Description: "SMTP host"},
	{Name: "SMTP_PORT", DefaultValue: "25", Description: "SMTP port"},
}

// InitConfiguration loads the configuration file and environment overrides
func InitConfiguration() {
	for _, key := range AllowedConfigKey {
		viper.SetDefault(key.Name, key.DefaultValue)
	}

	viper.SetConfigName(ConfigName)
	viper.SetConfigType("toml")
	viper.AddConfigPath(ConfigPath)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		zap.L().Warn("No configuration file found, using defaults and environment", zap.Error(err))
	}
}
