package memory

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type inventoryRepo struct {
	*repositories
}

func (r *inventoryRepo) GetByID(_ context.Context, tenantID, itemID string) (*model.InventoryItem, error) {
	release, err := r.enter("inventory.GetByID")
	defer release()
	if err != nil {
		return nil, err
	}
	return r.get(tenantID, itemID), nil
}

func (r *inventoryRepo) GetForUpdate(_ context.Context, tenantID, itemID string) (*model.InventoryItem, error) {
	release, err := r.enter("inventory.GetForUpdate")
	defer release()
	if err != nil {
		return nil, err
	}
	return r.get(tenantID, itemID), nil
}

func (r *inventoryRepo) get(tenantID, itemID string) *model.InventoryItem {
	item, ok := r.s.data.items[itemID]
	if !ok || item.TenantID != tenantID {
		return nil
	}
	return &item
}

func (r *inventoryRepo) GetByPartCode(_ context.Context, tenantID, partCode string) (*model.InventoryItem, error) {
	release, err := r.enter("inventory.GetByPartCode")
	defer release()
	if err != nil {
		return nil, err
	}
	for _, item := range r.s.data.items {
		if item.TenantID == tenantID && item.PartCode == partCode {
			return &item, nil
		}
	}
	return nil, nil
}

func (r *inventoryRepo) FindAll(_ context.Context, f *dto.InventoryFilters) ([]model.InventoryItem, int, error) {
	release, err := r.enter("inventory.FindAll")
	defer release()
	if err != nil {
		return nil, 0, err
	}

	var rows []model.InventoryItem
	for _, item := range r.s.data.items {
		if item.TenantID != f.TenantID {
			continue
		}
		if f.LowStock && !item.LowStock() {
			continue
		}
		rows = append(rows, item)
	}
	sortByCreated(rows, func(i model.InventoryItem) (int64, string) { return i.UpdatedAt.UnixNano(), i.ID })
	return paginate(rows, f.Page, f.PageSize), len(rows), nil
}

func (r *inventoryRepo) UpdateQuantity(_ context.Context, item *model.InventoryItem) error {
	release, err := r.enter("inventory.UpdateQuantity")
	defer release()
	if err != nil {
		return err
	}
	current, ok := r.s.data.items[item.ID]
	if !ok || current.TenantID != item.TenantID {
		return nil
	}
	current.Quantity = item.Quantity
	current.UpdatedAt = item.UpdatedAt
	r.s.data.items[item.ID] = current
	return nil
}

func (r *inventoryRepo) Delete(_ context.Context, tenantID, itemID string) error {
	release, err := r.enter("inventory.Delete")
	defer release()
	if err != nil {
		return err
	}
	if item, ok := r.s.data.items[itemID]; ok && item.TenantID == tenantID {
		delete(r.s.data.items, itemID)
	}
	return nil
}

func (r *inventoryRepo) IsReferenced(_ context.Context, tenantID, itemID string) (bool, error) {
	release, err := r.enter("inventory.IsReferenced")
	defer release()
	if err != nil {
		return false, err
	}
	for _, l := range r.s.data.partLines {
		if l.TenantID == tenantID && l.InventoryID == itemID {
			return true, nil
		}
	}
	for _, it := range r.s.data.invoiceItems {
		if it.TenantID == tenantID && it.InventoryID != nil && *it.InventoryID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (r *inventoryRepo) LogAdjustment(_ context.Context, adj *model.InventoryAdjustment) error {
	release, err := r.enter("inventory.LogAdjustment")
	defer release()
	if err != nil {
		return err
	}
	r.s.data.adjustments = append(r.s.data.adjustments, *adj)
	return nil
}

func (r *inventoryRepo) ListAdjustments(_ context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	release, err := r.enter("inventory.ListAdjustments")
	defer release()
	if err != nil {
		return nil, 0, err
	}

	var rows []model.InventoryAdjustment
	// Newest first: walk the append-only log backwards.
	for i := len(r.s.data.adjustments) - 1; i >= 0; i-- {
		a := r.s.data.adjustments[i]
		if a.TenantID != f.TenantID {
			continue
		}
		if f.ItemID != "" && a.ItemID != f.ItemID {
			continue
		}
		if f.StartDate != nil && a.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && a.CreatedAt.After(*f.EndDate) {
			continue
		}
		rows = append(rows, a)
	}
	return paginate(rows, f.Page, f.PageSize), len(rows), nil
}
