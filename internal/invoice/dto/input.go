package dto

import (
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// GenerateOptions override tenant defaults when invoicing a job.
type GenerateOptions struct {
	TaxRate *decimal.Decimal
	DueDate *time.Time
	Notes   *string
}

type CreateInvoiceItemInput struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	InventoryID *string         `json:"inventory_id"`
}

type CreateInvoiceInput struct {
	CustomerID string                   `json:"customer_id"`
	VehicleID  *string                  `json:"vehicle_id"`
	Items      []CreateInvoiceItemInput `json:"items"`
	DueDate    *time.Time               `json:"due_date"`
	Discount   decimal.Decimal          `json:"discount"`
	TaxRate    *decimal.Decimal         `json:"tax_rate"`
	Notes      *string                  `json:"notes"`
	Send       bool                     `json:"send"`
}

type UpdateStatusInput struct {
	InvoiceID string              `json:"-"`
	Status    model.InvoiceStatus `json:"status"`
}
