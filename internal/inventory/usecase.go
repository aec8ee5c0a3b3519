package inventory

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type UseCase interface {
	GetItem(ctx context.Context, actor model.Actor, itemID string) (*model.InventoryItem, error)
	ListLowStock(ctx context.Context, actor model.Actor, page, pageSize int) ([]model.InventoryItem, int, error)
	AdjustStock(ctx context.Context, actor model.Actor, input *dto.AdjustStockInput) (*model.InventoryItem, error)
	ForceSetQuantity(ctx context.Context, actor model.Actor, input *dto.ForceSetInput) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, actor model.Actor, itemID string) error
	ListAdjustments(ctx context.Context, actor model.Actor, filters *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error)
	ReceivePurchase(ctx context.Context, actor model.Actor, input *dto.ReceivePurchaseInput) ([]model.InventoryItem, error)
}
