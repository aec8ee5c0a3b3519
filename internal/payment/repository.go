package payment

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, tenantID, paymentID string) (*model.Payment, error)
	ListByInvoice(ctx context.Context, tenantID, invoiceID string) ([]model.Payment, error)
	SumByInvoice(ctx context.Context, tenantID, invoiceID string) (decimal.Decimal, error)
	CountByInvoice(ctx context.Context, tenantID, invoiceID string) (int, error)
	Delete(ctx context.Context, tenantID, paymentID string) error
}
