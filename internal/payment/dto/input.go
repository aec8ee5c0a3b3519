package dto

import "github.com/shopspring/decimal"

type RecordPaymentInput struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference *string         `json:"reference"`
}
