package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	// Producer defaults
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	// Topics
	DefaultBookingEventsTopic    = "suitespot.booking-events"
	DefaultBookingEventsDLQTopic = "suitespot.booking-events.dlq"

	DefaultEnableMiddleware = true
)
