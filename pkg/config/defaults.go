package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "suitespot"
	DefaultMongoConnTimeout  = 10 * time.Second

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

	DefaultLockTTL           = 60 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond
	DefaultLockWaitTimeout   = 5 * time.Second

	DefaultListingCacheTTL  = 30 * time.Second
	DefaultListingCacheSize = 1000

	DefaultRedisDB      = 0
	DefaultKafkaEnabled = false

	DefaultPageSize        = 10
	DefaultPaginationLimit = 100
)
