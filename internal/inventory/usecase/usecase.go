package usecase

import (
	"context"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/ledger"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	tx     store.TxManager
	retry  store.RetryPolicy
	events events.Publisher
	logger logger.ZapLogger
}

func NewInventoryUseCase(tx store.TxManager, retry store.RetryPolicy, pub events.Publisher, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		tx:     tx,
		retry:  retry,
		events: pub,
		logger: log,
	}
}

func (uc *inventoryUseCase) GetItem(ctx context.Context, actor model.Actor, itemID string) (*model.InventoryItem, error) {
	item, err := uc.tx.Repositories().Inventory().GetByID(ctx, actor.TenantID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NotFound("inventory item")
	}
	return item, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, actor model.Actor, page, pageSize int) ([]model.InventoryItem, int, error) {
	return uc.tx.Repositories().Inventory().FindAll(ctx, &dto.InventoryFilters{
		TenantID: actor.TenantID,
		LowStock: true,
		Page:     page,
		PageSize: pageSize,
	})
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, actor model.Actor, input *dto.AdjustStockInput) (*model.InventoryItem, error) {
	reason := input.Reason
	if reason == "" {
		reason = "manual adjustment"
	}
	refType := input.ReferenceType
	if refType == "" && input.ReferenceID == "" {
		refType = model.ReferenceManual
	}

	var res *ledger.Result
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		var err error
		res, err = ledger.Adjust(ctx, repos.Inventory(), actor, ledger.Entry{
			ItemID:        input.ItemID,
			Delta:         input.Delta,
			Reason:        reason,
			ReferenceType: refType,
			ReferenceID:   input.ReferenceID,
		}, time.Now().UTC())
		return err
	})
	if err != nil {
		apperror.Log(uc.logger, "adjust stock failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("item_id", input.ItemID),
			zap.Int("delta", input.Delta),
		)
		return nil, err
	}

	events.Emit(ctx, uc.events, uc.logger, ledger.Events(actor.TenantID, res)...)
	return res.Item, nil
}

func (uc *inventoryUseCase) ForceSetQuantity(ctx context.Context, actor model.Actor, input *dto.ForceSetInput) (*model.InventoryItem, error) {
	var res *ledger.Result
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		var err error
		res, err = ledger.ForceSet(ctx, repos.Inventory(), actor, input.ItemID, input.Quantity, input.Reason, time.Now().UTC())
		return err
	})
	if err != nil {
		apperror.Log(uc.logger, "force set quantity failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("item_id", input.ItemID),
		)
		return nil, err
	}

	if res.Adjustment != nil {
		uc.logger.Info("inventory quantity overwritten",
			zap.String("tenant_id", actor.TenantID),
			zap.String("item_id", res.Item.ID),
			zap.Int("delta", res.Adjustment.Delta),
			zap.String("actor_id", actor.UserID),
		)
	}
	events.Emit(ctx, uc.events, uc.logger, ledger.Events(actor.TenantID, res)...)
	return res.Item, nil
}

func (uc *inventoryUseCase) DeleteItem(ctx context.Context, actor model.Actor, itemID string) error {
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		// 1. Lock the item so no line can start referencing it meanwhile
		item, err := repos.Inventory().GetForUpdate(ctx, actor.TenantID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.NotFound("inventory item")
		}

		// 2. Refuse while job cards or invoices point at it
		inUse, err := repos.Inventory().IsReferenced(ctx, actor.TenantID, itemID)
		if err != nil {
			return err
		}
		if inUse {
			return apperror.New(apperror.ErrItemInUse, "%s is used by job cards or invoices and cannot be deleted", item.Name)
		}

		return repos.Inventory().Delete(ctx, actor.TenantID, itemID)
	})
	if err != nil {
		apperror.Log(uc.logger, "delete inventory item failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("item_id", itemID),
		)
	}
	return err
}

func (uc *inventoryUseCase) ListAdjustments(ctx context.Context, actor model.Actor, filters *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	filters.TenantID = actor.TenantID
	return uc.tx.Repositories().Inventory().ListAdjustments(ctx, filters)
}

func (uc *inventoryUseCase) ReceivePurchase(ctx context.Context, actor model.Actor, input *dto.ReceivePurchaseInput) ([]model.InventoryItem, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.New(apperror.ErrInvalidInput, "purchase %s has no lines", input.PurchaseID)
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.New(apperror.ErrInvalidInput, "part %s: received quantity must be positive", line.PartCode)
		}
	}

	var results []*ledger.Result
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		results = nil
		now := time.Now().UTC()
		for _, line := range input.Lines {
			item, err := repos.Inventory().GetByPartCode(ctx, actor.TenantID, line.PartCode)
			if err != nil {
				return err
			}
			if item == nil {
				return apperror.New(apperror.ErrNotFound, "no inventory item with part code %s", line.PartCode)
			}

			res, err := ledger.Adjust(ctx, repos.Inventory(), actor, ledger.Entry{
				ItemID:        item.ID,
				Delta:         line.Quantity,
				Reason:        "purchase received",
				ReferenceType: model.ReferencePurchase,
				ReferenceID:   input.PurchaseID,
			}, now)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, uc.events, uc.logger, ledger.Events(actor.TenantID, results...)...)
	items := make([]model.InventoryItem, 0, len(results))
	for _, res := range results {
		items = append(items, *res.Item)
	}
	return items, nil
}
