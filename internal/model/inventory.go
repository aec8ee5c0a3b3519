package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID           string          `db:"id" json:"id"`
	TenantID     string          `db:"tenant_id" json:"tenant_id"`
	PartCode     string          `db:"part_code" json:"part_code"`
	Name         string          `db:"name" json:"name"`
	Quantity     int             `db:"quantity" json:"quantity"`
	ReorderLevel int             `db:"reorder_level" json:"reorder_level"`
	UnitCost     decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	SellingPrice decimal.Decimal `db:"selling_price" json:"selling_price"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

const (
	ReferenceJobCard  = "job_card"
	ReferenceJobLine  = "job_part_line"
	ReferenceInvoice  = "invoice"
	ReferencePurchase = "purchase"
	ReferenceManual   = "manual"
)

// InventoryAdjustment is one append-only row of the stock ledger.
type InventoryAdjustment struct {
	ID             string    `db:"id" json:"id"`
	TenantID       string    `db:"tenant_id" json:"tenant_id"`
	ItemID         string    `db:"item_id" json:"item_id"`
	Delta          int       `db:"delta" json:"delta"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	Reason         string    `db:"reason" json:"reason"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id,omitempty"`
	ActorID        *string   `db:"actor_id" json:"actor_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
