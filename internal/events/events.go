// Package events publishes domain events after their transaction commits.
// Delivery is best effort: a failed publish is logged and never undoes the
// state change that produced it.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/pkg/broker"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TypeStockAdjusted    = "inventory.stock_adjusted"
	TypeLowStock         = "inventory.low_stock"
	TypeJobCardCreated   = "jobcard.created"
	TypeJobCardCompleted = "jobcard.completed"
	TypeJobCardCancelled = "jobcard.cancelled"
	TypeInvoiceCreated   = "invoice.created"
	TypeInvoiceStatus    = "invoice.status_changed"
	TypePaymentRecorded  = "payment.recorded"
	TypePaymentDeleted   = "payment.deleted"

	// TypePurchaseReceived is consumed, not produced.
	TypePurchaseReceived = "PurchaseReceived"
)

type Event struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	TenantID   string      `json:"tenant_id"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"timestamp"`
}

func New(eventType, tenantID string, payload interface{}) Event {
	return Event{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		TenantID:   tenantID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type KafkaPublisher struct {
	producer *broker.KafkaProducer
}

func NewKafkaPublisher(producer *broker.KafkaProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, evt.TenantID, value)
}

type noop struct{}

func (noop) Publish(context.Context, Event) error { return nil }

// Noop drops every event. Used when Kafka is disabled.
func Noop() Publisher { return noop{} }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns recorded events with the given type, oldest first.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Emit publishes evts in order, logging failures instead of returning them.
func Emit(ctx context.Context, pub Publisher, log logger.ZapLogger, evts ...Event) {
	for _, evt := range evts {
		if err := pub.Publish(ctx, evt); err != nil {
			log.Warn("failed to publish event",
				zap.String("event_type", evt.EventType),
				zap.String("tenant_id", evt.TenantID),
				zap.Error(err),
			)
		}
	}
}
