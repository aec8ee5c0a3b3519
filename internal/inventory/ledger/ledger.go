// Package ledger applies stock movements to a locked inventory row and writes
// the matching audit entry. Callers run it inside their own transaction so a
// stock change commits or rolls back together with whatever caused it.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/google/uuid"
)

type Entry struct {
	ItemID        string
	Delta         int
	Reason        string
	ReferenceType string
	ReferenceID   string
}

type Result struct {
	Item *model.InventoryItem
	// Adjustment is nil when nothing changed.
	Adjustment *model.InventoryAdjustment
}

// Adjust moves stock by e.Delta. A move that would leave the item below zero
// fails with ErrInsufficientStock and writes nothing.
func Adjust(ctx context.Context, repo inventory.Repository, actor model.Actor, e Entry, now time.Time) (*Result, error) {
	if e.Delta == 0 {
		return nil, apperror.New(apperror.ErrInvalidInput, "stock adjustment must not be zero")
	}

	// 1. Lock current row
	item, err := repo.GetForUpdate(ctx, actor.TenantID, e.ItemID)
	if err != nil {
		return nil, fmt.Errorf("lock inventory item: %w", err)
	}
	if item == nil {
		return nil, apperror.NotFound("inventory item")
	}

	// 2. Validate
	before := item.Quantity
	after := before + e.Delta
	if after < 0 {
		return nil, apperror.New(apperror.ErrInsufficientStock,
			"insufficient stock for %s: %d available, %d requested", item.Name, before, -e.Delta)
	}

	return write(ctx, repo, actor, item, after, e, now)
}

// ForceSet overwrites the quantity, clamping negative targets to zero. The
// audit entry carries the effective delta so the ledger still sums to the
// on-hand quantity.
func ForceSet(ctx context.Context, repo inventory.Repository, actor model.Actor, itemID string, quantity int, reason string, now time.Time) (*Result, error) {
	item, err := repo.GetForUpdate(ctx, actor.TenantID, itemID)
	if err != nil {
		return nil, fmt.Errorf("lock inventory item: %w", err)
	}
	if item == nil {
		return nil, apperror.NotFound("inventory item")
	}

	if quantity < 0 {
		quantity = 0
	}
	if quantity == item.Quantity {
		return &Result{Item: item}, nil
	}

	if reason == "" {
		reason = "stock count correction"
	}
	e := Entry{
		ItemID:        itemID,
		Delta:         quantity - item.Quantity,
		Reason:        reason,
		ReferenceType: model.ReferenceManual,
	}
	return write(ctx, repo, actor, item, quantity, e, now)
}

func write(ctx context.Context, repo inventory.Repository, actor model.Actor, item *model.InventoryItem, after int, e Entry, now time.Time) (*Result, error) {
	before := item.Quantity
	item.Quantity = after
	item.UpdatedAt = now

	if err := repo.UpdateQuantity(ctx, item); err != nil {
		return nil, fmt.Errorf("update inventory quantity: %w", err)
	}

	adj := &model.InventoryAdjustment{
		ID:             uuid.New().String(),
		TenantID:       actor.TenantID,
		ItemID:         item.ID,
		Delta:          e.Delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         e.Reason,
		ReferenceType:  optional(e.ReferenceType),
		ReferenceID:    optional(e.ReferenceID),
		ActorID:        actor.UserRef(),
		CreatedAt:      now,
	}
	if err := repo.LogAdjustment(ctx, adj); err != nil {
		return nil, fmt.Errorf("log inventory adjustment: %w", err)
	}

	return &Result{Item: item, Adjustment: adj}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type stockPayload struct {
	ItemID       string `json:"item_id"`
	PartCode     string `json:"part_code"`
	Delta        int    `json:"delta"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
	Reason       string `json:"reason"`
}

// Events describes what the results changed: one stock_adjusted per written
// adjustment and a low_stock for every item left at or under its reorder level.
func Events(tenantID string, results ...*Result) []events.Event {
	var out []events.Event
	for _, r := range results {
		if r == nil || r.Adjustment == nil {
			continue
		}
		payload := stockPayload{
			ItemID:       r.Item.ID,
			PartCode:     r.Item.PartCode,
			Delta:        r.Adjustment.Delta,
			Quantity:     r.Item.Quantity,
			ReorderLevel: r.Item.ReorderLevel,
			Reason:       r.Adjustment.Reason,
		}
		out = append(out, events.New(events.TypeStockAdjusted, tenantID, payload))
		if r.Item.LowStock() {
			out = append(out, events.New(events.TypeLowStock, tenantID, payload))
		}
	}
	return out
}
