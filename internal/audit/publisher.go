// Package audit provides the append-only donation audit trail: events
// are published to a Redis stream at donation time and drained to
// Postgres by a background worker.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classfund/classfund/internal/metrics"
)

const (
	// StreamKey is the Redis stream for donation audit events.
	StreamKey = "stream:donation_audit"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Payload is the compressed event format for the Redis stream.
type Payload struct {
	DonationID int64    `json:"did"`
	Email      string   `json:"e"`
	Amount     string   `json:"a"`
	ProjectID  string   `json:"pid"`
	TeacherID  string   `json:"tid"`
	Tags       []string `json:"tg,omitempty"`
	RecordedAt int64    `json:"t"` // Unix milliseconds
}

// Publisher enqueues donation audit events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new audit event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "audit.publisher"),
		metrics: recorder,
	}
}

// Publish adds an audit event to the stream. The publish is bounded by
// PublishTimeout so a slow Redis never stalls the donation path; on
// failure the event is dropped with a metric, never the donation.
func (p *Publisher) Publish(ctx context.Context, event Payload) error {
	data, err := json.Marshal(event)
	if err != nil {
		p.metrics.IncAuditEventPublished("dropped")
		return fmt.Errorf("marshal audit event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Err()
	if err != nil {
		p.metrics.IncAuditEventPublished("dropped")
		p.logger.Warn("audit event dropped",
			slog.Int64("donation_id", event.DonationID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish audit event: %w", err)
	}

	p.metrics.IncAuditEventPublished("success")
	return nil
}
