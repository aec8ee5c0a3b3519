package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Deduper claims an event id so redelivered messages are applied once.
type Deduper interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

const dedupeTTL = 72 * time.Hour

// PurchaseListener restocks inventory when purchasing reports received goods.
type PurchaseListener struct {
	consumer MessageReader
	dedupe   Deduper
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewPurchaseListener(consumer MessageReader, dedupe Deduper, uc inventory.UseCase, log logger.ZapLogger) *PurchaseListener {
	return &PurchaseListener{
		consumer: consumer,
		dedupe:   dedupe,
		uc:       uc,
		logger:   log,
	}
}

func (l *PurchaseListener) Start(ctx context.Context) {
	l.logger.Info("Starting purchase Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping purchase Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type PurchaseReceivedEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   PurchasePayload `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type PurchasePayload struct {
	PurchaseID string                `json:"purchase_id"`
	TenantID   string                `json:"tenant_id"`
	ReceivedBy string                `json:"received_by"`
	Items      []PurchaseItemPayload `json:"items"`
}

type PurchaseItemPayload struct {
	PartCode string `json:"part_code"`
	Quantity int    `json:"quantity"`
}

func (l *PurchaseListener) processMessage(ctx context.Context, value []byte) {
	var event PurchaseReceivedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != events.TypePurchaseReceived {
		return
	}
	if event.Payload.TenantID == "" {
		l.logger.Warn("PurchaseReceived event without tenant", zap.String("event_id", event.EventID))
		return
	}

	key := fmt.Sprintf("garage:events:%s", event.EventID)
	claimed, err := l.dedupe.AcquireLock(ctx, key, event.EventID, dedupeTTL)
	if err != nil {
		// Without the dedupe store a redelivery could restock twice.
		l.logger.Error("Failed to claim event", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	if !claimed {
		l.logger.Debug("Skipping already processed event", zap.String("event_id", event.EventID))
		return
	}

	l.logger.Info("Processing PurchaseReceived event",
		zap.String("purchase_id", event.Payload.PurchaseID),
		zap.String("tenant_id", event.Payload.TenantID),
	)

	actor := model.Actor{TenantID: event.Payload.TenantID, UserID: event.Payload.ReceivedBy}
	lines := make([]dto.PurchaseLine, 0, len(event.Payload.Items))
	for _, item := range event.Payload.Items {
		lines = append(lines, dto.PurchaseLine{PartCode: item.PartCode, Quantity: item.Quantity})
	}
	items, err := l.uc.ReceivePurchase(ctx, actor, &dto.ReceivePurchaseInput{
		PurchaseID: event.Payload.PurchaseID,
		Lines:      lines,
	})
	if err != nil {
		apperror.Log(l.logger, "Failed to restock purchase", err,
			zap.String("purchase_id", event.Payload.PurchaseID),
			zap.String("event_id", event.EventID),
		)
		// Nothing was applied. A rejected purchase keeps its claim, anything
		// else is released so a redelivery retries it.
		if !apperror.IsBusiness(err) {
			_ = l.dedupe.ReleaseLock(ctx, key, event.EventID)
		}
		return
	}

	l.logger.Info("Purchase restocked",
		zap.String("purchase_id", event.Payload.PurchaseID),
		zap.Int("items", len(items)),
	)
}
