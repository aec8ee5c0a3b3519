// Package money holds the invoice arithmetic. Amounts are decimals with two
// places. Rounding is half-up and happens once, on the tax amount.
package money

import (
	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/shopspring/decimal"
)

const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero, which is half-up for the non-negative
// amounts invoices carry.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// InCents reports whether d has no more than two decimal places.
func InCents(d decimal.Decimal) bool {
	return d.Equal(Round(d))
}

func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

type Totals struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Compute derives tax and total from a subtotal, a discount and a percentage
// tax rate: tax = round((subtotal - discount) * rate / 100),
// total = subtotal - discount + tax.
func Compute(subtotal, discount, taxRate decimal.Decimal) (Totals, error) {
	if subtotal.IsNegative() {
		return Totals{}, apperror.New(apperror.ErrInvalidAmount, "subtotal cannot be negative")
	}
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return Totals{}, apperror.New(apperror.ErrInvalidAmount, "discount must be between 0 and the subtotal")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return Totals{}, apperror.New(apperror.ErrInvalidAmount, "tax rate must be between 0 and 100")
	}
	if !InCents(subtotal) || !InCents(discount) {
		return Totals{}, apperror.New(apperror.ErrInvalidAmount, "amounts cannot have more than %d decimal places", Places)
	}
	if !InCents(taxRate) {
		return Totals{}, apperror.New(apperror.ErrInvalidAmount, "tax rate cannot have more than %d decimal places", Places)
	}

	taxable := subtotal.Sub(discount)
	tax := Round(taxable.Mul(taxRate).Div(hundred))
	return Totals{
		Subtotal:  subtotal,
		Discount:  discount,
		TaxRate:   taxRate,
		TaxAmount: tax,
		Total:     taxable.Add(tax),
	}, nil
}

// Balance is what remains to be paid. It is negative when the invoice is overpaid.
func Balance(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid)
}

// Covers reports whether paid settles total.
func Covers(paid, total decimal.Decimal) bool {
	return paid.GreaterThanOrEqual(total)
}
