package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classfund/classfund/internal/metrics"
	"github.com/classfund/classfund/internal/model"
)

const (
	// ConsumerGroup is the Redis consumer group name.
	ConsumerGroup = "audit_writers"

	// DefaultBatchSize is the max events per batch.
	DefaultBatchSize = 200

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second
)

// Sink is the persistence interface the worker drains into.
type Sink interface {
	BulkInsert(ctx context.Context, events []*model.AuditEvent) error
}

// Worker drains donation audit events from the Redis stream into the
// audit table. One worker per process is enough for this write volume.
type Worker struct {
	redis        *redis.Client
	sink         Sink
	logger       *slog.Logger
	metrics      metrics.Recorder
	consumerID   string
	batchSize    int
	blockTimeout time.Duration

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewWorker creates a new audit worker.
func NewWorker(client *redis.Client, sink Sink, logger *slog.Logger, consumerID string, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		redis:        client,
		sink:         sink,
		logger:       logger.With("component", "audit.worker", "consumer_id", consumerID),
		metrics:      recorder,
		consumerID:   consumerID,
		batchSize:    DefaultBatchSize,
		blockTimeout: DefaultBlockTimeout,
	}
}

// Run starts the worker loop. Blocks until Shutdown is called or the
// context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	w.started = true
	w.done = make(chan struct{})
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	defer close(w.done)

	if err := w.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	w.logger.Info("audit worker started")

	for {
		w.mu.Lock()
		draining := w.draining
		w.mu.Unlock()

		if draining {
			w.logger.Info("audit worker draining, stopping")
			return nil
		}

		if err := ctx.Err(); err != nil {
			return nil
		}

		streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroup,
			Consumer: w.consumerID,
			Streams:  []string{StreamKey, ">"},
			Count:    int64(w.batchSize),
			Block:    w.blockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Error("read audit stream", slog.String("error", err.Error()))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			w.processMessages(ctx, stream.Messages)
		}
	}
}

// Shutdown drains the worker and waits for the loop to exit.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.draining = true
	done := w.done
	cancel := w.cancel
	w.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// processMessages parses, persists, and acks one read batch.
// Unparseable messages are acked and counted as failed so they never
// poison the group.
func (w *Worker) processMessages(ctx context.Context, messages []redis.XMessage) {
	events := make([]*model.AuditEvent, 0, len(messages))
	ids := make([]string, 0, len(messages))

	for _, message := range messages {
		event, err := parseMessage(message)
		if err != nil {
			w.logger.Warn("skipping malformed audit message",
				slog.String("message_id", message.ID),
				slog.String("error", err.Error()),
			)
			w.metrics.IncAuditEventProcessed("failed")
			ids = append(ids, message.ID)
			continue
		}
		events = append(events, event)
		ids = append(ids, message.ID)
	}

	if err := w.flush(ctx, events); err != nil {
		w.logger.Error("flush audit batch", slog.String("error", err.Error()))
		// Leave messages unacked; they will be redelivered.
		return
	}

	if len(ids) > 0 {
		if err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, ids...).Err(); err != nil {
			w.logger.Error("ack audit messages", slog.String("error", err.Error()))
		}
	}
}

// flush persists one parsed batch and records metrics.
func (w *Worker) flush(ctx context.Context, events []*model.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	if err := w.sink.BulkInsert(ctx, events); err != nil {
		for range events {
			w.metrics.IncAuditEventProcessed("failed")
		}
		return err
	}

	for range events {
		w.metrics.IncAuditEventProcessed("success")
	}
	w.metrics.ObserveAuditBatchSize(len(events))

	return nil
}

// ensureConsumerGroup creates the consumer group if it does not exist.
func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// parseMessage decodes one stream entry into an audit event.
func parseMessage(message redis.XMessage) (*model.AuditEvent, error) {
	raw, ok := message.Values["payload"].(string)
	if !ok {
		return nil, errors.New("missing payload field")
	}

	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	if payload.DonationID <= 0 {
		return nil, errors.New("missing donation id")
	}

	return &model.AuditEvent{
		DonationID: payload.DonationID,
		Email:      payload.Email,
		Amount:     payload.Amount,
		ProjectID:  payload.ProjectID,
		Tags:       payload.Tags,
		CreatedAt:  time.UnixMilli(payload.RecordedAt).UTC(),
	}, nil
}
