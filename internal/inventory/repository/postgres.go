package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB sqlx.ExtContext
}

// NewPGRepository accepts either the pool or a transaction.
func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

const itemColumns = `id, tenant_id, part_code, name, quantity, reorder_level, unit_cost, selling_price, created_at, updated_at`

func (r *PGRepository) GetByID(ctx context.Context, tenantID, itemID string) (*model.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE tenant_id = $1 AND id = $2`, tenantID, itemID)
}

func (r *PGRepository) GetByPartCode(ctx context.Context, tenantID, partCode string) (*model.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE tenant_id = $1 AND part_code = $2`, tenantID, partCode)
}

func (r *PGRepository) GetForUpdate(ctx context.Context, tenantID, itemID string) (*model.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, itemID)
}

func (r *PGRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := sqlx.GetContext(ctx, r.DB, &item, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryItem, int, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.LowStock {
		conditions = append(conditions, "quantity <= reorder_level")
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	if err := postgres.NamedGet(ctx, r.DB, &count, "SELECT count(*) FROM inventory_items"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + itemColumns + " FROM inventory_items" + whereClause + " ORDER BY updated_at DESC, id DESC"
	if f.PageSize > 0 {
		query += postgres.PageClause(f.Page, f.PageSize)
	}

	var items []model.InventoryItem
	if err := postgres.NamedSelect(ctx, r.DB, &items, query, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) UpdateQuantity(ctx context.Context, item *model.InventoryItem) error {
	query := `
        UPDATE inventory_items
        SET quantity = :quantity, updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, item)
	if postgres.IsCheckViolation(err) {
		return apperror.New(apperror.ErrInsufficientStock, "insufficient stock for %s", item.Name)
	}
	return err
}

func (r *PGRepository) Delete(ctx context.Context, tenantID, itemID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM inventory_items WHERE tenant_id = $1 AND id = $2`, tenantID, itemID)
	if postgres.IsForeignKeyViolation(err) {
		return apperror.New(apperror.ErrItemInUse, "inventory item is referenced by job cards or invoices")
	}
	return err
}

func (r *PGRepository) IsReferenced(ctx context.Context, tenantID, itemID string) (bool, error) {
	query := `
        SELECT EXISTS (SELECT 1 FROM job_part_lines WHERE tenant_id = $1 AND inventory_id = $2)
            OR EXISTS (SELECT 1 FROM invoice_items WHERE tenant_id = $1 AND inventory_id = $2)
    `
	var referenced bool
	if err := sqlx.GetContext(ctx, r.DB, &referenced, query, tenantID, itemID); err != nil {
		return false, err
	}
	return referenced, nil
}

func (r *PGRepository) LogAdjustment(ctx context.Context, a *model.InventoryAdjustment) error {
	query := `
        INSERT INTO inventory_adjustments (
            id, tenant_id, item_id, delta, quantity_before, quantity_after,
            reason, reference_type, reference_id, actor_id, created_at
        )
        VALUES (
            :id, :tenant_id, :item_id, :delta, :quantity_before, :quantity_after,
            :reason, :reference_type, :reference_id, :actor_id, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, a)
	return err
}

func (r *PGRepository) ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	if err := postgres.NamedGet(ctx, r.DB, &count, "SELECT count(*) FROM inventory_adjustments"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_adjustments" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		query += postgres.PageClause(f.Page, f.PageSize)
	}

	var items []model.InventoryAdjustment
	if err := postgres.NamedSelect(ctx, r.DB, &items, query, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
