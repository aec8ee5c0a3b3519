package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB sqlx.ExtContext
}

func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, inv *model.Invoice) error {
	query := `
        INSERT INTO invoices (
            id, tenant_id, number, job_card_id, customer_id, vehicle_id,
            subtotal, discount, tax_rate, tax_amount, total_amount,
            status, due_date, notes, created_by, created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :number, :job_card_id, :customer_id, :vehicle_id,
            :subtotal, :discount, :tax_rate, :tax_amount, :total_amount,
            :status, :due_date, :notes, :created_by, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, inv)
	if postgres.IsUniqueViolation(err) {
		// Either the number raced another allocation or the job was
		// invoiced concurrently; a retry sorts out which.
		return apperror.New(apperror.ErrDuplicateNumber, "invoice number %s already exists", inv.Number)
	}
	return err
}

func (r *PGRepository) CreateItems(ctx context.Context, items []model.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `
        INSERT INTO invoice_items (
            id, tenant_id, invoice_id, description, quantity, unit_price, total_price, inventory_id
        )
        VALUES (
            :id, :tenant_id, :invoice_id, :description, :quantity, :unit_price, :total_price, :inventory_id
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, items)
	return err
}

func (r *PGRepository) GetByID(ctx context.Context, tenantID, invoiceID string) (*model.Invoice, error) {
	return r.getOne(ctx, `SELECT * FROM invoices WHERE tenant_id = $1 AND id = $2`, tenantID, invoiceID)
}

func (r *PGRepository) GetForUpdate(ctx context.Context, tenantID, invoiceID string) (*model.Invoice, error) {
	return r.getOne(ctx, `SELECT * FROM invoices WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, invoiceID)
}

func (r *PGRepository) GetByJobCard(ctx context.Context, tenantID, jobID string) (*model.Invoice, error) {
	return r.getOne(ctx, `SELECT * FROM invoices WHERE tenant_id = $1 AND job_card_id = $2`, tenantID, jobID)
}

func (r *PGRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.Invoice, error) {
	var inv model.Invoice
	if err := sqlx.GetContext(ctx, r.DB, &inv, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) ListItems(ctx context.Context, tenantID, invoiceID string) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem
	err := sqlx.SelectContext(ctx, r.DB, &items,
		`SELECT * FROM invoice_items WHERE tenant_id = $1 AND invoice_id = $2 ORDER BY id`, tenantID, invoiceID)
	return items, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InvoiceFilters) ([]model.Invoice, int, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	if err := postgres.NamedGet(ctx, r.DB, &count, "SELECT count(*) FROM invoices"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM invoices" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		query += postgres.PageClause(f.Page, f.PageSize)
	}

	var invoices []model.Invoice
	if err := postgres.NamedSelect(ctx, r.DB, &invoices, query, args); err != nil {
		return nil, 0, err
	}
	return invoices, count, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, inv *model.Invoice) error {
	query := `
        UPDATE invoices SET status = :status, updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, inv)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, tenantID, invoiceID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM invoices WHERE tenant_id = $1 AND id = $2`, tenantID, invoiceID)
	if postgres.IsForeignKeyViolation(err) {
		return apperror.New(apperror.ErrHasPayments, "invoice has recorded payments")
	}
	return err
}
