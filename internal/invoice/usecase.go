package invoice

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type UseCase interface {
	GenerateFromJob(ctx context.Context, actor model.Actor, jobID string, opts *dto.GenerateOptions) (*model.Invoice, error)
	Create(ctx context.Context, actor model.Actor, input *dto.CreateInvoiceInput) (*model.Invoice, error)
	Get(ctx context.Context, actor model.Actor, invoiceID string) (*dto.InvoiceView, error)
	List(ctx context.Context, actor model.Actor, filters *dto.InvoiceFilters) ([]dto.InvoiceView, int, error)
	UpdateStatus(ctx context.Context, actor model.Actor, input *dto.UpdateStatusInput) (*model.Invoice, error)
	Delete(ctx context.Context, actor model.Actor, invoiceID string) error
}
