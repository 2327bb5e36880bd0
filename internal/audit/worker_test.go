package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classfund/classfund/internal/metrics"
	"github.com/classfund/classfund/internal/model"
)

type fakeSink struct {
	batches [][]*model.AuditEvent
	err     error
}

func (f *fakeSink) BulkInsert(_ context.Context, events []*model.AuditEvent) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, events)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseMessage(t *testing.T) {
	payload := Payload{
		DonationID: 7,
		Email:      "donor@example.com",
		Amount:     "99.99",
		ProjectID:  "p1",
		TeacherID:  "t1",
		Tags:       []string{"donation"},
		RecordedAt: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	event, err := parseMessage(redis.XMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"payload": string(data)},
	})
	if err != nil {
		t.Fatalf("parse message: %v", err)
	}

	if event.DonationID != 7 {
		t.Errorf("expected donation id 7, got %d", event.DonationID)
	}
	if event.Email != "donor@example.com" {
		t.Errorf("unexpected email: %q", event.Email)
	}
	if event.Amount != "99.99" {
		t.Errorf("unexpected amount: %q", event.Amount)
	}
	if !event.CreatedAt.Equal(time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected created_at: %v", event.CreatedAt)
	}
}

func TestParseMessage_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{"missing_payload", map[string]interface{}{}},
		{"not_json", map[string]interface{}{"payload": "{"}},
		{"zero_donation_id", map[string]interface{}{"payload": `{"did":0}`}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := parseMessage(redis.XMessage{ID: "1-0", Values: test.values}); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestWorker_Flush(t *testing.T) {
	sink := &fakeSink{}
	recorder := metrics.NewInMemory()
	worker := NewWorker(nil, sink, discardLogger(), "test-consumer", recorder)

	events := []*model.AuditEvent{
		{DonationID: 1, Amount: "10"},
		{DonationID: 2, Amount: "20"},
	}

	if err := worker.flush(context.Background(), events); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if len(sink.batches) != 1 || len(sink.batches[0]) != 2 {
		t.Fatalf("expected one batch of two events, got %v", sink.batches)
	}

	snap := recorder.Snapshot()
	if snap.AuditEventsProcessed != 2 {
		t.Errorf("expected 2 processed events, got %d", snap.AuditEventsProcessed)
	}
	if snap.AuditBatchCount != 1 {
		t.Errorf("expected 1 batch, got %d", snap.AuditBatchCount)
	}
}

func TestWorker_FlushError(t *testing.T) {
	sink := &fakeSink{err: errors.New("db down")}
	recorder := metrics.NewInMemory()
	worker := NewWorker(nil, sink, discardLogger(), "test-consumer", recorder)

	err := worker.flush(context.Background(), []*model.AuditEvent{{DonationID: 1}})
	if err == nil {
		t.Fatal("expected flush error")
	}

	if snap := recorder.Snapshot(); snap.AuditEventsFailed != 1 {
		t.Errorf("expected 1 failed event, got %d", snap.AuditEventsFailed)
	}
}

func TestWorker_FlushEmpty(t *testing.T) {
	worker := NewWorker(nil, &fakeSink{}, discardLogger(), "test-consumer", nil)
	if err := worker.flush(context.Background(), nil); err != nil {
		t.Fatalf("flush empty: %v", err)
	}
}
