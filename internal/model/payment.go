package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentBank   = "bank_transfer"
	PaymentMobile = "mobile_money"
	PaymentCheque = "cheque"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentBank, PaymentMobile, PaymentCheque:
		return true
	}
	return false
}

type Payment struct {
	ID         string          `db:"id" json:"id"`
	TenantID   string          `db:"tenant_id" json:"tenant_id"`
	InvoiceID  string          `db:"invoice_id" json:"invoice_id"`
	Number     string          `db:"number" json:"number"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Method     string          `db:"method" json:"method"`
	Reference  *string         `db:"reference" json:"reference,omitempty"`
	ReceivedBy *string         `db:"received_by" json:"received_by,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
