package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"suitespot/pkg/kafka"
)

// PublishMetrics counts producer outcomes for one producer
type PublishMetrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	durationTotal atomic.Int64 // Nanoseconds
}

// Snapshot is a point in time copy of PublishMetrics
type Snapshot struct {
	Published          int64  `json:"published"`
	Failed             int64  `json:"failed"`
	AvgPublishDuration string `json:"avg_publish_duration"`
}

func NewPublishMetrics() *PublishMetrics {
	return &PublishMetrics{}
}

func (m *PublishMetrics) Reset() {
	m.published.Store(0)
	m.failed.Store(0)
	m.durationTotal.Store(0)
}

// AvgPublishDuration averages over successful publishes only
func (m *PublishMetrics) AvgPublishDuration() time.Duration {
	published := m.published.Load()
	if published == 0 {
		return 0
	}
	return time.Duration(m.durationTotal.Load() / published)
}

func (m *PublishMetrics) Snapshot() Snapshot {
	return Snapshot{
		Published:          m.published.Load(),
		Failed:             m.failed.Load(),
		AvgPublishDuration: m.AvgPublishDuration().String(),
	}
}

// Middleware tracks publish counts and latency
func (m *PublishMetrics) Middleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		if err != nil {
			m.failed.Add(1)
			return err
		}
		m.published.Add(1)
		m.durationTotal.Add(int64(time.Since(start)))

		return nil
	}
}
