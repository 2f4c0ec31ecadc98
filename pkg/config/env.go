package config

// EnvPrefix is the envconfig prefix; individual fields carry explicit
// DISPATCHLY_* names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DISPATCHLY_DB_DSN"
	EnvDBHost = "DISPATCHLY_DB_HOST"
	EnvDBUser = "DISPATCHLY_DB_USER"
	EnvDBName = "DISPATCHLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
