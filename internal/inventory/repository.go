package inventory

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

// Repository reads return nil, nil when the row does not exist.
type Repository interface {
	GetByID(ctx context.Context, tenantID, itemID string) (*model.InventoryItem, error)
	GetByPartCode(ctx context.Context, tenantID, partCode string) (*model.InventoryItem, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, tenantID, itemID string) (*model.InventoryItem, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, int, error)

	UpdateQuantity(ctx context.Context, item *model.InventoryItem) error
	Delete(ctx context.Context, tenantID, itemID string) error
	// IsReferenced reports whether any job part line or invoice item points at the item.
	IsReferenced(ctx context.Context, tenantID, itemID string) (bool, error)

	LogAdjustment(ctx context.Context, adj *model.InventoryAdjustment) error
	ListAdjustments(ctx context.Context, filters *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error)
}
