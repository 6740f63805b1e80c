package config

// EnvPrefix is the envconfig prefix shared by every section.
const EnvPrefix = "cartbase"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "CARTBASE_APP_ENV"
	EnvPort     = "CARTBASE_APP_PORT"
	EnvDBDSN    = "CARTBASE_DB_DSN"
	EnvDBHost   = "CARTBASE_DB_HOST"
	EnvDBUser   = "CARTBASE_DB_USER"
	EnvDBName   = "CARTBASE_DB_NAME"
	EnvRedisURL = "CARTBASE_REDIS_URL"

	EnvJWTSecret = "CARTBASE_JWT_SECRET"
	EnvJWTIssuer = "CARTBASE_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
