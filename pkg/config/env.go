package config

const (
	EnvPrefix = "PCFORGE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "PCFORGE_APP_ENV"
	EnvPort     = "PCFORGE_APP_PORT"
	EnvLogLevel = "PCFORGE_LOG_LEVEL"

	EnvStoreDriver = "PCFORGE_STORE_DRIVER"
	EnvSQLitePath  = "PCFORGE_SQLITE_PATH"
	EnvAutoMigrate = "PCFORGE_AUTO_MIGRATE"

	EnvDBDSN  = "PCFORGE_DB_DSN"
	EnvDBHost = "PCFORGE_DB_HOST"
	EnvDBPort = "PCFORGE_DB_PORT"
	EnvDBUser = "PCFORGE_DB_USER"
	EnvDBPass = "PCFORGE_DB_PASSWORD"
	EnvDBName = "PCFORGE_DB_NAME"

	EnvRedisURL = "PCFORGE_REDIS_URL"

	EnvOpenAIKey     = "PCFORGE_OPENAI_API_KEY"
	EnvOpenAIModel   = "PCFORGE_OPENAI_MODEL"
	EnvOpenAITimeout = "PCFORGE_OPENAI_TIMEOUT"

	EnvFallbackBuildPath = "PCFORGE_FALLBACK_BUILD_PATH"
	EnvCatalogPath       = "PCFORGE_CATALOG_PATH"

	EnvTaxRate          = "PCFORGE_TAX_RATE"
	EnvShippingFlat     = "PCFORGE_SHIPPING_FLAT"
	EnvFreeShippingOver = "PCFORGE_FREE_SHIPPING_OVER"

	EnvGCPProjectID      = "PCFORGE_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "PCFORGE_PUBSUB_ORDERS_TOPIC"

	EnvSeedUsername = "PCFORGE_SEED_USERNAME"
	EnvSeedPassword = "PCFORGE_SEED_PASSWORD"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
