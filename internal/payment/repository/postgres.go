package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB sqlx.ExtContext
}

func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
        INSERT INTO payments (
            id, tenant_id, invoice_id, number, amount, method, reference, received_by, created_at
        )
        VALUES (
            :id, :tenant_id, :invoice_id, :number, :amount, :method, :reference, :received_by, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, p)
	if postgres.IsUniqueViolation(err) {
		return apperror.New(apperror.ErrDuplicateNumber, "payment number %s already exists", p.Number)
	}
	if postgres.IsCheckViolation(err) {
		return apperror.New(apperror.ErrInvalidAmount, "payment amount must be greater than zero")
	}
	return err
}

func (r *PGRepository) GetByID(ctx context.Context, tenantID, paymentID string) (*model.Payment, error) {
	var p model.Payment
	err := sqlx.GetContext(ctx, r.DB, &p, `SELECT * FROM payments WHERE tenant_id = $1 AND id = $2`, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := sqlx.SelectContext(ctx, r.DB, &payments,
		`SELECT * FROM payments WHERE tenant_id = $1 AND invoice_id = $2 ORDER BY created_at DESC, id DESC`, tenantID, invoiceID)
	return payments, err
}

func (r *PGRepository) SumByInvoice(ctx context.Context, tenantID, invoiceID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := sqlx.GetContext(ctx, r.DB, &sum,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE tenant_id = $1 AND invoice_id = $2`, tenantID, invoiceID)
	return sum, err
}

func (r *PGRepository) CountByInvoice(ctx context.Context, tenantID, invoiceID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.DB, &count,
		`SELECT count(*) FROM payments WHERE tenant_id = $1 AND invoice_id = $2`, tenantID, invoiceID)
	return count, err
}

func (r *PGRepository) Delete(ctx context.Context, tenantID, paymentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM payments WHERE tenant_id = $1 AND id = $2`, tenantID, paymentID)
	return err
}
