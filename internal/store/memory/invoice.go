package memory

import (
	"context"
	"sort"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type invoiceRepo struct {
	*repositories
}

func (r *invoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	release, err := r.enter("invoices.Create")
	defer release()
	if err != nil {
		return err
	}
	for _, existing := range r.s.data.invoices {
		if existing.TenantID != inv.TenantID {
			continue
		}
		if existing.Number == inv.Number {
			return apperror.New(apperror.ErrDuplicateNumber, "invoice number %s already exists", inv.Number)
		}
		if inv.JobCardID != nil && existing.JobCardID != nil && *existing.JobCardID == *inv.JobCardID {
			return apperror.New(apperror.ErrInvalidTransition, "job card already has an invoice")
		}
	}
	stored := *inv
	stored.Items = nil
	r.s.data.invoices[inv.ID] = stored
	return nil
}

func (r *invoiceRepo) CreateItems(_ context.Context, items []model.InvoiceItem) error {
	release, err := r.enter("invoices.CreateItems")
	defer release()
	if err != nil {
		return err
	}
	for _, it := range items {
		r.s.data.invoiceItems[it.ID] = it
	}
	return nil
}

func (r *invoiceRepo) GetByID(_ context.Context, tenantID, invoiceID string) (*model.Invoice, error) {
	release, err := r.enter("invoices.GetByID")
	defer release()
	if err != nil {
		return nil, err
	}
	return r.get(tenantID, invoiceID), nil
}

func (r *invoiceRepo) GetForUpdate(_ context.Context, tenantID, invoiceID string) (*model.Invoice, error) {
	release, err := r.enter("invoices.GetForUpdate")
	defer release()
	if err != nil {
		return nil, err
	}
	return r.get(tenantID, invoiceID), nil
}

func (r *invoiceRepo) get(tenantID, invoiceID string) *model.Invoice {
	inv, ok := r.s.data.invoices[invoiceID]
	if !ok || inv.TenantID != tenantID {
		return nil
	}
	return &inv
}

func (r *invoiceRepo) GetByJobCard(_ context.Context, tenantID, jobID string) (*model.Invoice, error) {
	release, err := r.enter("invoices.GetByJobCard")
	defer release()
	if err != nil {
		return nil, err
	}
	for _, inv := range r.s.data.invoices {
		if inv.TenantID == tenantID && inv.JobCardID != nil && *inv.JobCardID == jobID {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *invoiceRepo) ListItems(_ context.Context, tenantID, invoiceID string) ([]model.InvoiceItem, error) {
	release, err := r.enter("invoices.ListItems")
	defer release()
	if err != nil {
		return nil, err
	}
	var rows []model.InvoiceItem
	for _, it := range r.s.data.invoiceItems {
		if it.TenantID == tenantID && it.InvoiceID == invoiceID {
			rows = append(rows, it)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (r *invoiceRepo) FindAll(_ context.Context, f *dto.InvoiceFilters) ([]model.Invoice, int, error) {
	release, err := r.enter("invoices.FindAll")
	defer release()
	if err != nil {
		return nil, 0, err
	}
	var rows []model.Invoice
	for _, inv := range r.s.data.invoices {
		if inv.TenantID != f.TenantID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
			continue
		}
		rows = append(rows, inv)
	}
	sortByCreated(rows, func(i model.Invoice) (int64, string) { return i.CreatedAt.UnixNano(), i.ID })
	return paginate(rows, f.Page, f.PageSize), len(rows), nil
}

func (r *invoiceRepo) UpdateStatus(_ context.Context, inv *model.Invoice) error {
	release, err := r.enter("invoices.UpdateStatus")
	defer release()
	if err != nil {
		return err
	}
	if current, ok := r.s.data.invoices[inv.ID]; ok && current.TenantID == inv.TenantID {
		current.Status = inv.Status
		current.UpdatedAt = inv.UpdatedAt
		r.s.data.invoices[inv.ID] = current
	}
	return nil
}

func (r *invoiceRepo) Delete(_ context.Context, tenantID, invoiceID string) error {
	release, err := r.enter("invoices.Delete")
	defer release()
	if err != nil {
		return err
	}
	inv, ok := r.s.data.invoices[invoiceID]
	if !ok || inv.TenantID != tenantID {
		return nil
	}
	delete(r.s.data.invoices, invoiceID)
	for id, it := range r.s.data.invoiceItems {
		if it.InvoiceID == invoiceID {
			delete(r.s.data.invoiceItems, id)
		}
	}
	return nil
}
