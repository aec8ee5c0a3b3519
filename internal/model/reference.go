package model

import "github.com/shopspring/decimal"

// ServiceItem is a row of the garage's service catalog. Read-only here.
type ServiceItem struct {
	ID       string          `db:"id" json:"id"`
	TenantID string          `db:"tenant_id" json:"tenant_id"`
	Name     string          `db:"name" json:"name"`
	Price    decimal.Decimal `db:"price" json:"price"`
}

type GarageSettings struct {
	TenantID         string          `db:"tenant_id" json:"tenant_id"`
	DefaultTaxRate   decimal.Decimal `db:"default_tax_rate" json:"default_tax_rate"`
	InvoicePrefix    string          `db:"invoice_prefix" json:"invoice_prefix"`
	PaymentTermsDays int             `db:"payment_terms_days" json:"payment_terms_days"`
}
