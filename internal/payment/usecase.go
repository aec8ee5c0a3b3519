package payment

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/payment/dto"
)

type UseCase interface {
	Record(ctx context.Context, actor model.Actor, input *dto.RecordPaymentInput) (*model.Payment, error)
	Delete(ctx context.Context, actor model.Actor, paymentID string) error
	ListByInvoice(ctx context.Context, actor model.Actor, invoiceID string) ([]model.Payment, error)
}
