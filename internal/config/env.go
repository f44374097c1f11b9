// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "PM_PORT"
	EnvLogLevel        = "PM_LOG_LEVEL"
	EnvShutdownTimeout = "PM_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir          = "PM_DATA_DIR"
	EnvReferenceSource  = "PM_REFERENCE_SOURCE"
	EnvReferenceDir     = "PM_REFERENCE_DIR"
	EnvReferenceTTL     = "PM_REFERENCE_TTL"
	EnvReferenceTimeout = "PM_REFERENCE_LOAD_TIMEOUT"

	// Recommendation
	EnvMajorCap        = "PM_MAJOR_CAP"
	EnvModulesPerMajor = "PM_MODULES_PER_MAJOR"

	// R2 reference source
	EnvR2AccountID       = "PM_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "PM_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "PM_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "PM_R2_BUCKET_NAME"
	EnvR2KeyPrefix       = "PM_R2_KEY_PREFIX"

	// Redis shared cache
	EnvRedisAddr     = "PM_REDIS_ADDR"
	EnvRedisPassword = "PM_REDIS_PASSWORD"
	EnvRedisDB       = "PM_REDIS_DB"
	EnvRedisTTL      = "PM_REDIS_TTL"

	// Assistant
	EnvAssistantAPIKey      = "PM_ASSISTANT_API_KEY"
	EnvAssistantBaseURL     = "PM_ASSISTANT_BASE_URL"
	EnvAssistantModel       = "PM_ASSISTANT_MODEL"
	EnvAssistantBurst       = "PM_ASSISTANT_RATE_BURST"
	EnvAssistantRefillPerHr = "PM_ASSISTANT_RATE_REFILL"
	EnvAssistantDailyLimit  = "PM_ASSISTANT_RATE_DAILY"

	// Sentry
	EnvSentryDSN         = "PM_SENTRY_DSN"
	EnvSentryEnvironment = "PM_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "PM_SENTRY_SAMPLE_RATE"

	// Better Stack
	EnvBetterStackToken    = "PM_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "PM_BETTERSTACK_ENDPOINT"

	// Metrics
	EnvMetricsUsername = "PM_METRICS_USERNAME"
	EnvMetricsPassword = "PM_METRICS_PASSWORD"
)
