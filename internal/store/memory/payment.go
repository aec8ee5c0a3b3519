package memory

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/shopspring/decimal"
)

type paymentRepo struct {
	*repositories
}

func (r *paymentRepo) Create(_ context.Context, p *model.Payment) error {
	release, err := r.enter("payments.Create")
	defer release()
	if err != nil {
		return err
	}
	for _, existing := range r.s.data.payments {
		if existing.TenantID == p.TenantID && existing.Number == p.Number {
			return apperror.New(apperror.ErrDuplicateNumber, "payment number %s already exists", p.Number)
		}
	}
	r.s.data.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) GetByID(_ context.Context, tenantID, paymentID string) (*model.Payment, error) {
	release, err := r.enter("payments.GetByID")
	defer release()
	if err != nil {
		return nil, err
	}
	p, ok := r.s.data.payments[paymentID]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return &p, nil
}

func (r *paymentRepo) ListByInvoice(_ context.Context, tenantID, invoiceID string) ([]model.Payment, error) {
	release, err := r.enter("payments.ListByInvoice")
	defer release()
	if err != nil {
		return nil, err
	}
	return r.byInvoice(tenantID, invoiceID), nil
}

func (r *paymentRepo) byInvoice(tenantID, invoiceID string) []model.Payment {
	var rows []model.Payment
	for _, p := range r.s.data.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			rows = append(rows, p)
		}
	}
	sortByCreated(rows, func(p model.Payment) (int64, string) { return p.CreatedAt.UnixNano(), p.ID })
	return rows
}

func (r *paymentRepo) SumByInvoice(_ context.Context, tenantID, invoiceID string) (decimal.Decimal, error) {
	release, err := r.enter("payments.SumByInvoice")
	defer release()
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range r.byInvoice(tenantID, invoiceID) {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

func (r *paymentRepo) CountByInvoice(_ context.Context, tenantID, invoiceID string) (int, error) {
	release, err := r.enter("payments.CountByInvoice")
	defer release()
	if err != nil {
		return 0, err
	}
	return len(r.byInvoice(tenantID, invoiceID)), nil
}

func (r *paymentRepo) Delete(_ context.Context, tenantID, paymentID string) error {
	release, err := r.enter("payments.Delete")
	defer release()
	if err != nil {
		return err
	}
	if p, ok := r.s.data.payments[paymentID]; ok && p.TenantID == tenantID {
		delete(r.s.data.payments, paymentID)
	}
	return nil
}

type sequenceRepo struct {
	*repositories
}

func (r *sequenceRepo) Next(_ context.Context, tenantID, kind, period string) (int64, error) {
	release, err := r.enter("sequences.Next")
	defer release()
	if err != nil {
		return 0, err
	}
	key := tenantID + "|" + kind + "|" + period
	r.s.data.sequences[key]++
	return r.s.data.sequences[key], nil
}
