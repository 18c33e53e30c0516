package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "glowbridge"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisPassword = ""
	DefaultRedisDB       = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 100

	DefaultSlotDurationMin = 60
	MaxSlotDurationMin     = 480

	DefaultOTPLength         = 6
	DefaultOTPTTL            = 10 * time.Minute
	DefaultOTPMaxAttempts    = 3
	DefaultOTPResendCooldown = 60 * time.Second

	DefaultSlotHoldTTL = 10 * time.Second
)
