package config

const (
	EnvPrefix = "avpro"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "AVPRO_APP_ENV"
	EnvPort     = "AVPRO_APP_PORT"
	EnvRedisURL = "AVPRO_REDIS_URL"

	EnvDBDSN  = "AVPRO_DB_DSN"
	EnvDBHost = "AVPRO_DB_HOST"
	EnvDBUser = "AVPRO_DB_USER"
	EnvDBName = "AVPRO_DB_NAME"

	EnvLedgerIVARate = "AVPRO_LEDGER_IVA_RATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
