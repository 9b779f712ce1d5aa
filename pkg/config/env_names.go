package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SHOWROOM_DB_DSN"
	EnvDBHost = "SHOWROOM_DB_HOST"
	EnvDBUser = "SHOWROOM_DB_USER"
	EnvDBName = "SHOWROOM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
