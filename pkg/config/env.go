package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvLogLevel        = "STOREFRONT_LOG_LEVEL"
	EnvAPIBaseURL      = "STOREFRONT_API_BASE_URL"
	EnvCDNURL          = "STOREFRONT_CDN_URL"
	EnvAPITimeout      = "STOREFRONT_API_TIMEOUT"
	EnvSessionID       = "STOREFRONT_SESSION_ID"
	EnvSnapshotTTL     = "STOREFRONT_SESSION_SNAPSHOT_TTL"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvRedisAddr       = "STOREFRONT_REDIS_ADDR"
	EnvAllowedOrigins  = "STOREFRONT_HTTP_ALLOWED_ORIGINS"
	EnvShutdownTimeout = "STOREFRONT_HTTP_SHUTDOWN_TIMEOUT"
)
