package config

// EnvPrefix is handed to envconfig; every field carries an explicit envconfig tag so the
// prefix only matters for untagged additions.
const EnvPrefix = "XNTRACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:xntrack.db?_foreign_keys=on"

	NumberingMax   = "max"
	NumberingRedis = "redis"
)

const (
	EnvAppEnv   = "XNTRACK_APP_ENV"
	EnvPort     = "XNTRACK_APP_PORT"
	EnvLogLevel = "XNTRACK_LOG_LEVEL"

	EnvDBDSN    = "XNTRACK_DB_DSN"
	EnvDBDriver = "XNTRACK_DB_DRIVER"
	EnvDBHost   = "XNTRACK_DB_HOST"
	EnvDBPort   = "XNTRACK_DB_PORT"
	EnvDBUser   = "XNTRACK_DB_USER"
	EnvDBName   = "XNTRACK_DB_NAME"

	EnvRedisURL  = "XNTRACK_REDIS_URL"
	EnvRedisAddr = "XNTRACK_REDIS_ADDR"

	EnvUseSQLite   = "XNTRACK_USE_SQLITE"
	EnvAutoMigrate = "XNTRACK_AUTO_MIGRATE"

	EnvNumberingStrategy = "XNTRACK_NUMBERING_STRATEGY"
	EnvDefaultSaveAction = "XNTRACK_EDITOR_DEFAULT_SAVE_ACTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
