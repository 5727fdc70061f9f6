package config

// EnvPrefix scopes every environment variable read by envconfig.
const EnvPrefix = "PLUME"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "PLUME_APP_ENV"
	EnvPort   = "PLUME_APP_PORT"

	EnvDBDSN  = "PLUME_DB_DSN"
	EnvDBHost = "PLUME_DB_HOST"
	EnvDBUser = "PLUME_DB_USER"
	EnvDBName = "PLUME_DB_NAME"

	EnvRedisURL = "PLUME_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
