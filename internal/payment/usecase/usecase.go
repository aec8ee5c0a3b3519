package usecase

import (
	"context"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/money"
	"github.com/GideonMwiti/garagemaster-sub000/internal/numbering"
	"github.com/GideonMwiti/garagemaster-sub000/internal/payment"
	"github.com/GideonMwiti/garagemaster-sub000/internal/payment/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type paymentUseCase struct {
	tx     store.TxManager
	retry  store.RetryPolicy
	events events.Publisher
	logger logger.ZapLogger
}

func NewPaymentUseCase(tx store.TxManager, retry store.RetryPolicy, pub events.Publisher, log logger.ZapLogger) payment.UseCase {
	return &paymentUseCase{
		tx:     tx,
		retry:  retry,
		events: pub,
		logger: log,
	}
}

type paymentEvent struct {
	Payment       *model.Payment      `json:"payment"`
	InvoiceNumber string              `json:"invoice_number"`
	InvoiceStatus model.InvoiceStatus `json:"invoice_status"`
	PaidAmount    string              `json:"paid_amount"`
}

// Record adds a payment and marks the invoice paid once payments cover its
// total. Overpayment is kept as recorded.
func (uc *paymentUseCase) Record(ctx context.Context, actor model.Actor, input *dto.RecordPaymentInput) (*model.Payment, error) {
	// Amounts are kept in cents, so the check applies to the rounded value.
	amount := money.Round(input.Amount)
	if !amount.IsPositive() {
		return nil, apperror.New(apperror.ErrInvalidAmount, "payment amount must be at least 0.01")
	}
	method := input.Method
	if method == "" {
		method = model.PaymentCash
	}
	if !model.ValidPaymentMethod(method) {
		return nil, apperror.New(apperror.ErrInvalidInput, "unknown payment method %q", method)
	}

	var (
		p   *model.Payment
		evt paymentEvent
	)
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		now := time.Now().UTC()

		// 1. Lock the invoice so concurrent payments settle in order
		inv, err := repos.Invoices().GetForUpdate(ctx, actor.TenantID, input.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperror.NotFound("invoice")
		}
		if inv.Status == model.InvoiceCancelled {
			return apperror.New(apperror.ErrInvalidTransition, "invoice %s is cancelled and cannot take payments", inv.Number)
		}

		// 2. Insert the payment
		number, err := numbering.Generate(ctx, repos.Sequences(), actor.TenantID, numbering.KindPayment, numbering.PrefixPayment, now)
		if err != nil {
			return err
		}
		p = &model.Payment{
			ID:         uuid.New().String(),
			TenantID:   actor.TenantID,
			InvoiceID:  inv.ID,
			Number:     number,
			Amount:     amount,
			Method:     method,
			Reference:  input.Reference,
			ReceivedBy: actor.UserRef(),
			CreatedAt:  now,
		}
		if err := repos.Payments().Create(ctx, p); err != nil {
			return err
		}

		// 3. Settle the invoice when covered
		paid, err := repos.Payments().SumByInvoice(ctx, actor.TenantID, inv.ID)
		if err != nil {
			return err
		}
		if money.Covers(paid, inv.TotalAmount) && inv.Status != model.InvoicePaid {
			inv.Status = model.InvoicePaid
			inv.UpdatedAt = now
			if err := repos.Invoices().UpdateStatus(ctx, inv); err != nil {
				return err
			}
		}

		evt = paymentEvent{Payment: p, InvoiceNumber: inv.Number, InvoiceStatus: inv.Status, PaidAmount: paid.StringFixed(money.Places)}
		return nil
	})
	if err != nil {
		apperror.Log(uc.logger, "record payment failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("invoice_id", input.InvoiceID),
		)
		return nil, err
	}

	events.Emit(ctx, uc.events, uc.logger, events.New(events.TypePaymentRecorded, actor.TenantID, evt))
	return p, nil
}

// Delete removes a payment. A paid invoice that is no longer covered goes
// back to sent.
func (uc *paymentUseCase) Delete(ctx context.Context, actor model.Actor, paymentID string) error {
	var evt paymentEvent
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		p, err := repos.Payments().GetByID(ctx, actor.TenantID, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return apperror.NotFound("payment")
		}

		inv, err := repos.Invoices().GetForUpdate(ctx, actor.TenantID, p.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperror.NotFound("invoice")
		}

		if err := repos.Payments().Delete(ctx, actor.TenantID, paymentID); err != nil {
			return err
		}

		paid, err := repos.Payments().SumByInvoice(ctx, actor.TenantID, inv.ID)
		if err != nil {
			return err
		}
		if inv.Status == model.InvoicePaid && !money.Covers(paid, inv.TotalAmount) {
			inv.Status = model.InvoiceSent
			inv.UpdatedAt = time.Now().UTC()
			if err := repos.Invoices().UpdateStatus(ctx, inv); err != nil {
				return err
			}
		}

		evt = paymentEvent{Payment: p, InvoiceNumber: inv.Number, InvoiceStatus: inv.Status, PaidAmount: paid.StringFixed(money.Places)}
		return nil
	})
	if err != nil {
		apperror.Log(uc.logger, "delete payment failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("payment_id", paymentID),
		)
		return err
	}

	uc.logger.Info("payment deleted",
		zap.String("tenant_id", actor.TenantID),
		zap.String("payment_number", evt.Payment.Number),
		zap.String("actor_id", actor.UserID),
	)
	events.Emit(ctx, uc.events, uc.logger, events.New(events.TypePaymentDeleted, actor.TenantID, evt))
	return nil
}

func (uc *paymentUseCase) ListByInvoice(ctx context.Context, actor model.Actor, invoiceID string) ([]model.Payment, error) {
	repos := uc.tx.Repositories()

	inv, err := repos.Invoices().GetByID(ctx, actor.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NotFound("invoice")
	}
	return repos.Payments().ListByInvoice(ctx, actor.TenantID, invoiceID)
}
