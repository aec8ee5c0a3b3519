// Package memory is an in-process implementation of store.TxManager used by
// tests and local runs. Transactions are serialized by a single mutex and
// rolled back by restoring a snapshot taken when they began.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/numbering"
	"github.com/GideonMwiti/garagemaster-sub000/internal/payment"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
)

type state struct {
	items        map[string]model.InventoryItem
	adjustments  []model.InventoryAdjustment
	services     map[string]model.ServiceItem
	jobs         map[string]model.JobCard
	serviceLines map[string]model.JobServiceLine
	partLines    map[string]model.JobPartLine
	invoices     map[string]model.Invoice
	invoiceItems map[string]model.InvoiceItem
	payments     map[string]model.Payment
	sequences    map[string]int64
}

func newState() *state {
	return &state{
		items:        make(map[string]model.InventoryItem),
		services:     make(map[string]model.ServiceItem),
		jobs:         make(map[string]model.JobCard),
		serviceLines: make(map[string]model.JobServiceLine),
		partLines:    make(map[string]model.JobPartLine),
		invoices:     make(map[string]model.Invoice),
		invoiceItems: make(map[string]model.InvoiceItem),
		payments:     make(map[string]model.Payment),
		sequences:    make(map[string]int64),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		items:        cloneMap(s.items),
		adjustments:  append([]model.InventoryAdjustment(nil), s.adjustments...),
		services:     cloneMap(s.services),
		jobs:         cloneMap(s.jobs),
		serviceLines: cloneMap(s.serviceLines),
		partLines:    cloneMap(s.partLines),
		invoices:     cloneMap(s.invoices),
		invoiceItems: cloneMap(s.invoiceItems),
		payments:     cloneMap(s.payments),
		sequences:    cloneMap(s.sequences),
	}
}

type failure struct {
	err  error
	skip int
}

type Store struct {
	mu       sync.Mutex
	data     *state
	failures map[string]*failure
}

func New() *Store {
	return &Store{
		data:     newState(),
		failures: make(map[string]*failure),
	}
}

// FailOn makes every later call of op return err until ClearFailures.
// Ops are named "<repository>.<Method>", e.g. "jobcards.Update".
func (s *Store) FailOn(op string, err error) {
	s.FailAfter(op, 0, err)
}

// FailAfter lets op succeed n more times, then fails it like FailOn.
func (s *Store) FailAfter(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{err: err, skip: n}
}

func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]*failure)
}

func (s *Store) SeedItem(item model.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.items[item.ID] = item
}

func (s *Store) SeedService(svc model.ServiceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.services[svc.ID] = svc
}

func (s *Store) Repositories() store.Repositories {
	return &repositories{s: s}
}

func (s *Store) WithinTx(ctx context.Context, fn store.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, &repositories{s: s, tx: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

type repositories struct {
	s  *Store
	tx bool
}

func (r *repositories) Inventory() inventory.Repository { return &inventoryRepo{r} }
func (r *repositories) JobCards() jobcard.Repository    { return &jobRepo{r} }
func (r *repositories) Invoices() invoice.Repository    { return &invoiceRepo{r} }
func (r *repositories) Payments() payment.Repository    { return &paymentRepo{r} }
func (r *repositories) Sequences() numbering.Allocator  { return &sequenceRepo{r} }

// enter takes the store lock for calls made outside a transaction. Inside a
// transaction the lock is already held by WithinTx.
func (r *repositories) enter(op string) (func(), error) {
	release := func() {}
	if !r.tx {
		r.s.mu.Lock()
		release = r.s.mu.Unlock
	}
	if f, ok := r.s.failures[op]; ok {
		if f.skip > 0 {
			f.skip--
			return release, nil
		}
		release()
		return func() {}, f.err
	}
	return release, nil
}

func paginate[T any](rows []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return rows
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func sortByCreated[T any](rows []T, created func(T) (int64, string)) {
	sort.Slice(rows, func(i, j int) bool {
		ti, idi := created(rows[i])
		tj, idj := created(rows[j])
		if ti != tj {
			return ti > tj
		}
		return idi > idj
	})
}
