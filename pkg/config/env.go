package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultSlotDurationMin = "DEFAULT_SLOT_DURATION_MIN"
	EnvMaxSlotDurationMin     = "MAX_SLOT_DURATION_MIN"

	EnvOTPLength         = "OTP_LENGTH"
	EnvOTPTTL            = "OTP_TTL"
	EnvOTPMaxAttempts    = "OTP_MAX_ATTEMPTS"
	EnvOTPResendCooldown = "OTP_RESEND_COOLDOWN"

	EnvSlotHoldTTL = "SLOT_HOLD_TTL"
)
