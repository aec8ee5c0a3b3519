package invoice

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type Repository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	CreateItems(ctx context.Context, items []model.InvoiceItem) error
	GetByID(ctx context.Context, tenantID, invoiceID string) (*model.Invoice, error)
	GetForUpdate(ctx context.Context, tenantID, invoiceID string) (*model.Invoice, error)
	GetByJobCard(ctx context.Context, tenantID, jobID string) (*model.Invoice, error)
	ListItems(ctx context.Context, tenantID, invoiceID string) ([]model.InvoiceItem, error)
	FindAll(ctx context.Context, filters *dto.InvoiceFilters) ([]model.Invoice, int, error)
	UpdateStatus(ctx context.Context, inv *model.Invoice) error
	// Delete removes the invoice together with its items.
	Delete(ctx context.Context, tenantID, invoiceID string) error
}
