package dto

import "time"

type InventoryFilters struct {
	TenantID string
	LowStock bool // quantity <= reorder_level
	Page     int
	PageSize int
}

type AdjustmentFilters struct {
	TenantID  string
	ItemID    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}
