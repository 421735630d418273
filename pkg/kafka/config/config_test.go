package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Brokers:               []string{"localhost:9092"},
		ProducerMaxAttempts:   3,
		ProducerBatchTimeout:  10 * time.Millisecond,
		ProducerRequireAcks:   -1,
		ProducerCompression:   "snappy",
		BookingEventsTopic:    "booking-events",
		BookingEventsDLQTopic: "booking-events.dlq",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no brokers", func(c *Config) { c.Brokers = nil }, "At least one Kafka broker"},
		{"empty broker", func(c *Config) { c.Brokers = []string{""} }, "Broker 0 cannot be empty"},
		{"zero attempts", func(c *Config) { c.ProducerMaxAttempts = 0 }, "ProducerMaxAttempts"},
		{"bad compression", func(c *Config) { c.ProducerCompression = "brotli" }, "ProducerCompression"},
		{"bad acks", func(c *Config) { c.ProducerRequireAcks = 2 }, "ProducerRequireAcks"},
		{"missing topic", func(c *Config) { c.BookingEventsTopic = "" }, "BookingEventsTopic cannot be empty"},
		{"dlq same as topic", func(c *Config) { c.BookingEventsDLQTopic = c.BookingEventsTopic }, "must differ"},
		{"dlq disabled", func(c *Config) { c.BookingEventsDLQTopic = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "broker-a:9092, broker-b:9092")
	t.Setenv(EnvKafkaBookingEventsTopic, "custom-events")
	t.Setenv(EnvKafkaProducerCompression, "zstd")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "broker-b:9092" {
		t.Errorf("brokers not trimmed: %v", cfg.Brokers)
	}
	if cfg.BookingEventsTopic != "custom-events" {
		t.Errorf("topic = %s", cfg.BookingEventsTopic)
	}
	if cfg.BookingEventsDLQTopic != DefaultBookingEventsDLQTopic {
		t.Errorf("dlq topic = %s", cfg.BookingEventsDLQTopic)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}
}
