package dto

import (
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/shopspring/decimal"
)

type InvoiceFilters struct {
	TenantID   string
	Status     model.InvoiceStatus
	CustomerID string
	Page       int
	PageSize   int
}

// InvoiceView is an invoice as read back by callers: stored fields plus the
// payment position and the status with overdue applied.
type InvoiceView struct {
	model.Invoice
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	Balance         decimal.Decimal     `json:"balance"`
	EffectiveStatus model.InvoiceStatus `json:"effective_status"`
}
