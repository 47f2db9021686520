package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/infrastructure/metrics"
)

// DefaultStream is the stream ledger events are appended to.
const DefaultStream = "zionledger:events"

// StreamPublisher appends outbox events to a Redis stream.
type StreamPublisher struct {
	client  redis.Cmdable
	stream  string
	maxLen  int64
	metrics *metrics.Metrics
}

// NewStreamPublisher creates a new StreamPublisher. A non-positive maxLen
// leaves the stream untrimmed.
func NewStreamPublisher(client redis.Cmdable, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}

	return &StreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// WithMetrics records stream operations.
func (p *StreamPublisher) WithMetrics(m *metrics.Metrics) *StreamPublisher {
	p.metrics = m
	return p
}

// Publish appends event to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":       event.ID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
			"payload":        string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if p.metrics != nil {
		p.metrics.RedisOperations.WithLabelValues("xadd").Inc()
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		if p.metrics != nil {
			p.metrics.RedisErrors.WithLabelValues("xadd").Inc()
		}

		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}

	return nil
}
