package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/ledger"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/money"
	"github.com/GideonMwiti/garagemaster-sub000/internal/numbering"
	"github.com/GideonMwiti/garagemaster-sub000/internal/settings"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type invoiceUseCase struct {
	tx       store.TxManager
	retry    store.RetryPolicy
	settings settings.Provider
	events   events.Publisher
	logger   logger.ZapLogger
}

func NewInvoiceUseCase(tx store.TxManager, retry store.RetryPolicy, sp settings.Provider, pub events.Publisher, log logger.ZapLogger) invoice.UseCase {
	return &invoiceUseCase{
		tx:       tx,
		retry:    retry,
		settings: sp,
		events:   pub,
		logger:   log,
	}
}

type statusChange struct {
	InvoiceID string              `json:"invoice_id"`
	Number    string              `json:"number"`
	From      model.InvoiceStatus `json:"from"`
	To        model.InvoiceStatus `json:"to"`
}

// GenerateFromJob bills a job and closes it in one transaction.
func (uc *invoiceUseCase) GenerateFromJob(ctx context.Context, actor model.Actor, jobID string, opts *dto.GenerateOptions) (*model.Invoice, error) {
	if opts == nil {
		opts = &dto.GenerateOptions{}
	}
	gs, err := uc.settings.Get(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("load garage settings: %w", err)
	}

	var (
		inv *model.Invoice
		job *model.JobCard
	)
	err = store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		now := time.Now().UTC()

		// 1. Lock the job and check it can still be billed
		job, err = repos.JobCards().GetForUpdate(ctx, actor.TenantID, jobID)
		if err != nil {
			return err
		}
		if job == nil {
			return apperror.NotFound("job card")
		}
		if job.Status.Terminal() {
			return apperror.New(apperror.ErrInvalidTransition, "job card %s is already %s", job.Number, job.Status)
		}

		// 2. One invoice per job
		existing, err := repos.Invoices().GetByJobCard(ctx, actor.TenantID, jobID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.New(apperror.ErrInvalidTransition, "job card %s is already invoiced as %s", job.Number, existing.Number)
		}

		// 3. Collect lines at their captured prices
		services, err := repos.JobCards().ListServiceLines(ctx, actor.TenantID, jobID)
		if err != nil {
			return err
		}
		parts, err := repos.JobCards().ListPartLines(ctx, actor.TenantID, jobID)
		if err != nil {
			return err
		}

		invoiceID := uuid.New().String()
		items := make([]model.InvoiceItem, 0, len(services)+len(parts))
		subtotal := decimal.Zero
		for _, l := range services {
			items = append(items, model.InvoiceItem{
				ID:          uuid.New().String(),
				TenantID:    actor.TenantID,
				InvoiceID:   invoiceID,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				TotalPrice:  l.Price,
			})
			subtotal = subtotal.Add(l.Price)
		}
		for _, l := range parts {
			inventoryID := l.InventoryID
			items = append(items, model.InvoiceItem{
				ID:          uuid.New().String(),
				TenantID:    actor.TenantID,
				InvoiceID:   invoiceID,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				TotalPrice:  l.Price,
				InventoryID: &inventoryID,
			})
			subtotal = subtotal.Add(l.Price)
		}

		// 4. Tax and totals, no discount on generated invoices
		rate := gs.DefaultTaxRate
		if opts.TaxRate != nil {
			rate = *opts.TaxRate
		}
		totals, err := money.Compute(subtotal, decimal.Zero, rate)
		if err != nil {
			return err
		}

		// 5. Number
		number, err := numbering.Generate(ctx, repos.Sequences(), actor.TenantID, numbering.KindInvoice, invoicePrefix(gs), now)
		if err != nil {
			return err
		}

		// 6. Invoice and items
		vehicleID := job.VehicleID
		inv = &model.Invoice{
			ID:          invoiceID,
			TenantID:    actor.TenantID,
			Number:      number,
			JobCardID:   &job.ID,
			CustomerID:  job.CustomerID,
			VehicleID:   &vehicleID,
			Subtotal:    totals.Subtotal,
			Discount:    totals.Discount,
			TaxRate:     totals.TaxRate,
			TaxAmount:   totals.TaxAmount,
			TotalAmount: totals.Total,
			Status:      model.InvoiceSent,
			DueDate:     dueDate(opts.DueDate, gs, now),
			Notes:       opts.Notes,
			CreatedBy:   actor.UserRef(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Invoices().Create(ctx, inv); err != nil {
			return err
		}
		if err := repos.Invoices().CreateItems(ctx, items); err != nil {
			return err
		}
		inv.Items = items

		// 7. Close the job
		job.Status = model.JobCompleted
		job.UpdatedAt = now
		return repos.JobCards().Update(ctx, job)
	})
	if err != nil {
		apperror.Log(uc.logger, "generate invoice from job failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("job_id", jobID),
		)
		return nil, err
	}

	uc.logger.Info("invoice generated",
		zap.String("tenant_id", actor.TenantID),
		zap.String("invoice_number", inv.Number),
		zap.String("job_number", job.Number),
		zap.String("total", inv.TotalAmount.StringFixed(money.Places)),
	)
	events.Emit(ctx, uc.events, uc.logger,
		events.New(events.TypeJobCardCompleted, actor.TenantID, job),
		events.New(events.TypeInvoiceCreated, actor.TenantID, inv),
	)
	return inv, nil
}

// Create bills ad-hoc items. Items drawn from inventory leave stock in the
// same transaction; one short item aborts the whole invoice.
func (uc *invoiceUseCase) Create(ctx context.Context, actor model.Actor, input *dto.CreateInvoiceInput) (*model.Invoice, error) {
	if input.CustomerID == "" {
		return nil, apperror.New(apperror.ErrInvalidInput, "customer is required")
	}
	if len(input.Items) == 0 {
		return nil, apperror.New(apperror.ErrInvalidInput, "an invoice needs at least one item")
	}
	for i, it := range input.Items {
		if it.Quantity <= 0 {
			return nil, apperror.New(apperror.ErrInvalidInput, "item %d: quantity must be positive", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return nil, apperror.New(apperror.ErrInvalidAmount, "item %d: unit price cannot be negative", i+1)
		}
		if !money.InCents(it.UnitPrice) {
			return nil, apperror.New(apperror.ErrInvalidAmount, "item %d: unit price cannot have more than %d decimal places", i+1, money.Places)
		}
		if it.InventoryID == nil && strings.TrimSpace(it.Description) == "" {
			return nil, apperror.New(apperror.ErrInvalidInput, "item %d: description is required", i+1)
		}
	}

	gs, err := uc.settings.Get(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("load garage settings: %w", err)
	}

	var (
		inv   *model.Invoice
		stock []*ledger.Result
	)
	err = store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		now := time.Now().UTC()
		stock = nil
		invoiceID := uuid.New().String()

		// 1. Items, taking inventory-backed ones out of stock
		items := make([]model.InvoiceItem, 0, len(input.Items))
		subtotal := decimal.Zero
		for _, it := range input.Items {
			item := model.InvoiceItem{
				ID:          uuid.New().String(),
				TenantID:    actor.TenantID,
				InvoiceID:   invoiceID,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				InventoryID: it.InventoryID,
			}
			if it.InventoryID != nil {
				res, err := ledger.Adjust(ctx, repos.Inventory(), actor, ledger.Entry{
					ItemID:        *it.InventoryID,
					Delta:         -it.Quantity,
					Reason:        "sold on invoice",
					ReferenceType: model.ReferenceInvoice,
					ReferenceID:   invoiceID,
				}, now)
				if err != nil {
					return err
				}
				stock = append(stock, res)
				if item.Description == "" {
					item.Description = res.Item.Name
				}
				if item.UnitPrice.IsZero() {
					item.UnitPrice = res.Item.SellingPrice
				}
			}
			item.TotalPrice = money.LineTotal(item.UnitPrice, item.Quantity)
			subtotal = subtotal.Add(item.TotalPrice)
			items = append(items, item)
		}

		// 2. Totals
		rate := gs.DefaultTaxRate
		if input.TaxRate != nil {
			rate = *input.TaxRate
		}
		totals, err := money.Compute(subtotal, input.Discount, rate)
		if err != nil {
			return err
		}

		// 3. Number and insert
		number, err := numbering.Generate(ctx, repos.Sequences(), actor.TenantID, numbering.KindInvoice, invoicePrefix(gs), now)
		if err != nil {
			return err
		}
		status := model.InvoiceDraft
		if input.Send {
			status = model.InvoiceSent
		}
		inv = &model.Invoice{
			ID:          invoiceID,
			TenantID:    actor.TenantID,
			Number:      number,
			CustomerID:  input.CustomerID,
			VehicleID:   input.VehicleID,
			Subtotal:    totals.Subtotal,
			Discount:    totals.Discount,
			TaxRate:     totals.TaxRate,
			TaxAmount:   totals.TaxAmount,
			TotalAmount: totals.Total,
			Status:      status,
			DueDate:     dueDate(input.DueDate, gs, now),
			Notes:       input.Notes,
			CreatedBy:   actor.UserRef(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Invoices().Create(ctx, inv); err != nil {
			return err
		}
		if err := repos.Invoices().CreateItems(ctx, items); err != nil {
			return err
		}
		inv.Items = items
		return nil
	})
	if err != nil {
		apperror.Log(uc.logger, "create invoice failed", err, zap.String("tenant_id", actor.TenantID))
		return nil, err
	}

	evts := append([]events.Event{events.New(events.TypeInvoiceCreated, actor.TenantID, inv)}, ledger.Events(actor.TenantID, stock...)...)
	events.Emit(ctx, uc.events, uc.logger, evts...)
	return inv, nil
}

func (uc *invoiceUseCase) Get(ctx context.Context, actor model.Actor, invoiceID string) (*dto.InvoiceView, error) {
	repos := uc.tx.Repositories()

	inv, err := repos.Invoices().GetByID(ctx, actor.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NotFound("invoice")
	}
	if inv.Items, err = repos.Invoices().ListItems(ctx, actor.TenantID, invoiceID); err != nil {
		return nil, err
	}
	return uc.view(ctx, repos, inv)
}

func (uc *invoiceUseCase) List(ctx context.Context, actor model.Actor, filters *dto.InvoiceFilters) ([]dto.InvoiceView, int, error) {
	repos := uc.tx.Repositories()
	filters.TenantID = actor.TenantID

	invoices, count, err := repos.Invoices().FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	views := make([]dto.InvoiceView, 0, len(invoices))
	for i := range invoices {
		v, err := uc.view(ctx, repos, &invoices[i])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *v)
	}
	return views, count, nil
}

func (uc *invoiceUseCase) view(ctx context.Context, repos store.Repositories, inv *model.Invoice) (*dto.InvoiceView, error) {
	paid, err := repos.Payments().SumByInvoice(ctx, inv.TenantID, inv.ID)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceView{
		Invoice:         *inv,
		PaidAmount:      paid,
		Balance:         money.Balance(inv.TotalAmount, paid),
		EffectiveStatus: inv.EffectiveStatus(time.Now()),
	}, nil
}

func (uc *invoiceUseCase) UpdateStatus(ctx context.Context, actor model.Actor, input *dto.UpdateStatusInput) (*model.Invoice, error) {
	if input.Status == model.InvoiceOverdue {
		return nil, apperror.New(apperror.ErrInvalidTransition, "overdue follows from the due date and cannot be set")
	}

	var (
		inv    *model.Invoice
		change statusChange
	)
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		var err error
		inv, err = repos.Invoices().GetForUpdate(ctx, actor.TenantID, input.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperror.NotFound("invoice")
		}

		from := inv.Status
		switch input.Status {
		case model.InvoiceSent:
			if from != model.InvoiceDraft {
				return invalidTransition(from, input.Status)
			}
		case model.InvoiceCancelled:
			if from != model.InvoiceDraft && from != model.InvoiceSent {
				return invalidTransition(from, input.Status)
			}
			count, err := repos.Payments().CountByInvoice(ctx, actor.TenantID, inv.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return apperror.New(apperror.ErrHasPayments, "invoice %s has %d payment(s) and cannot be cancelled", inv.Number, count)
			}
		case model.InvoicePaid:
			if from != model.InvoiceDraft && from != model.InvoiceSent {
				return invalidTransition(from, input.Status)
			}
			paid, err := repos.Payments().SumByInvoice(ctx, actor.TenantID, inv.ID)
			if err != nil {
				return err
			}
			if !money.Covers(paid, inv.TotalAmount) {
				return apperror.New(apperror.ErrInvalidTransition,
					"invoice %s is not settled: %s paid of %s", inv.Number, paid.StringFixed(money.Places), inv.TotalAmount.StringFixed(money.Places))
			}
		default:
			return invalidTransition(from, input.Status)
		}

		inv.Status = input.Status
		inv.UpdatedAt = time.Now().UTC()
		change = statusChange{InvoiceID: inv.ID, Number: inv.Number, From: from, To: inv.Status}
		return repos.Invoices().UpdateStatus(ctx, inv)
	})
	if err != nil {
		apperror.Log(uc.logger, "update invoice status failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("invoice_id", input.InvoiceID),
			zap.String("status", string(input.Status)),
		)
		return nil, err
	}

	events.Emit(ctx, uc.events, uc.logger, events.New(events.TypeInvoiceStatus, actor.TenantID, change))
	return inv, nil
}

// Delete removes an unpaid invoice. Stock taken by an ad-hoc invoice goes
// back on the shelf; a job's parts stay with the job card.
func (uc *invoiceUseCase) Delete(ctx context.Context, actor model.Actor, invoiceID string) error {
	var stock []*ledger.Result
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		stock = nil

		// 1. Lock and check for payments
		inv, err := repos.Invoices().GetForUpdate(ctx, actor.TenantID, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperror.NotFound("invoice")
		}

		count, err := repos.Payments().CountByInvoice(ctx, actor.TenantID, invoiceID)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperror.New(apperror.ErrHasPayments, "invoice %s has %d payment(s) and cannot be deleted", inv.Number, count)
		}

		// 2. Restock inventory-backed items of ad-hoc invoices
		if inv.JobCardID == nil {
			items, err := repos.Invoices().ListItems(ctx, actor.TenantID, invoiceID)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			for _, it := range items {
				if it.InventoryID == nil {
					continue
				}
				res, err := ledger.Adjust(ctx, repos.Inventory(), actor, ledger.Entry{
					ItemID:        *it.InventoryID,
					Delta:         it.Quantity,
					Reason:        "invoice deleted",
					ReferenceType: model.ReferenceInvoice,
					ReferenceID:   inv.ID,
				}, now)
				if err != nil {
					return err
				}
				stock = append(stock, res)
			}
		}

		return repos.Invoices().Delete(ctx, actor.TenantID, invoiceID)
	})
	if err != nil {
		apperror.Log(uc.logger, "delete invoice failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("invoice_id", invoiceID),
		)
		return err
	}

	events.Emit(ctx, uc.events, uc.logger, ledger.Events(actor.TenantID, stock...)...)
	return nil
}

func invalidTransition(from, to model.InvoiceStatus) error {
	return apperror.New(apperror.ErrInvalidTransition, "invoice cannot move from %s to %s", from, to)
}

func invoicePrefix(gs *model.GarageSettings) string {
	if gs.InvoicePrefix == "" {
		return numbering.PrefixInvoice
	}
	return gs.InvoicePrefix
}

func dueDate(requested *time.Time, gs *model.GarageSettings, now time.Time) time.Time {
	if requested != nil {
		return requested.UTC()
	}
	return now.AddDate(0, 0, gs.PaymentTermsDays)
}
