package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "suvarna"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Canonical env var names referenced by error messages and tests.
const (
	EnvAppEnv   = "SUVARNA_APP_ENV"
	EnvPort     = "SUVARNA_APP_PORT"
	EnvDBDSN    = "SUVARNA_DB_DSN"
	EnvDBHost   = "SUVARNA_DB_HOST"
	EnvDBUser   = "SUVARNA_DB_USER"
	EnvDBName   = "SUVARNA_DB_NAME"
	EnvRedisURL = "SUVARNA_REDIS_URL"

	EnvAutomationEnabled  = "SUVARNA_AUTOMATION_ENABLED"
	EnvAutomationSlots    = "SUVARNA_AUTOMATION_SLOTS"
	EnvAutomationTimezone = "SUVARNA_AUTOMATION_TIMEZONE"

	EnvVAPIDPublicKey  = "SUVARNA_PUSH_VAPID_PUBLIC_KEY"
	EnvVAPIDPrivateKey = "SUVARNA_PUSH_VAPID_PRIVATE_KEY"

	EnvAdminAPIToken = "SUVARNA_ADMIN_API_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
