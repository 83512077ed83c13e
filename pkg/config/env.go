package config

const (
	EnvPrefix = "OVENLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "OVENLY_APP_ENV"
	EnvPort      = "OVENLY_APP_PORT"
	EnvDBDSN     = "OVENLY_DB_DSN"
	EnvDBHost    = "OVENLY_DB_HOST"
	EnvDBUser    = "OVENLY_DB_USER"
	EnvDBName    = "OVENLY_DB_NAME"
	EnvRedisURL  = "OVENLY_REDIS_URL"
	EnvJWTSecret = "OVENLY_JWT_SECRET"
	EnvJWTIssuer = "OVENLY_JWT_ISSUER"
	EnvUseSQLite = "OVENLY_USE_SQLITE"
	EnvKafka     = "OVENLY_KAFKA_BROKERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
