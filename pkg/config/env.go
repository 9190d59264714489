package config

const (
	EnvPrefix = "CABANA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:cabana.db?_foreign_keys=on"
)

const (
	EnvAppEnv        = "CABANA_APP_ENV"
	EnvPort          = "CABANA_APP_PORT"
	EnvPublicDomain  = "CABANA_PUBLIC_DOMAIN"
	EnvAdminPassword = "CABANA_ADMIN_PASSWORD"

	EnvDBDSN    = "CABANA_DB_DSN"
	EnvDBDriver = "CABANA_DB_DRIVER"
	EnvDBHost   = "CABANA_DB_HOST"
	EnvDBPort   = "CABANA_DB_PORT"
	EnvDBUser   = "CABANA_DB_USER"
	EnvDBPass   = "CABANA_DB_PASSWORD"
	EnvDBName   = "CABANA_DB_NAME"

	EnvRedisURL = "CABANA_REDIS_URL"

	EnvCronInterval       = "CABANA_CRON_INTERVAL"
	EnvMercadoPagoToken   = "CABANA_MERCADOPAGO_ACCESS_TOKEN"
	EnvMercadoPagoMock    = "CABANA_MERCADOPAGO_MOCK"
	EnvMercadoPagoTimeout = "CABANA_MERCADOPAGO_TIMEOUT"
	EnvSMTPHost           = "CABANA_SMTP_HOST"
	EnvSMTPFrom           = "CABANA_SMTP_FROM"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
