// Package store defines the unit of work shared by the use cases. A
// Repositories value handed to a TxFunc is bound to one transaction, so every
// read and write made through it commits or rolls back together.
package store

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard"
	"github.com/GideonMwiti/garagemaster-sub000/internal/numbering"
	"github.com/GideonMwiti/garagemaster-sub000/internal/payment"
)

type Repositories interface {
	Inventory() inventory.Repository
	JobCards() jobcard.Repository
	Invoices() invoice.Repository
	Payments() payment.Repository
	Sequences() numbering.Allocator
}

type TxFunc func(ctx context.Context, repos Repositories) error

type TxManager interface {
	// Repositories returns repositories outside any transaction, for reads.
	Repositories() Repositories
	// WithinTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back otherwise.
	WithinTx(ctx context.Context, fn TxFunc) error
}
