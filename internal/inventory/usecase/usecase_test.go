package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store/memory"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/shopspring/decimal"
)

var owner = model.Actor{TenantID: "garage-1", UserID: "user-1", Role: model.RoleOwner}

type fixture struct {
	store  *memory.Store
	events *events.Recorder
	uc     inventory.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.New()
	rec := events.NewRecorder()
	return &fixture{
		store:  s,
		events: rec,
		uc:     NewInventoryUseCase(s, store.RetryPolicy{Attempts: 1}, rec, logger.NewNop()),
	}
}

func (f *fixture) seed(id string, qty, reorder int) {
	now := time.Now().UTC()
	f.store.SeedItem(model.InventoryItem{
		ID:           id,
		TenantID:     owner.TenantID,
		PartCode:     "P-" + id,
		Name:         "Part " + id,
		Quantity:     qty,
		ReorderLevel: reorder,
		UnitCost:     decimal.NewFromInt(10),
		SellingPrice: decimal.NewFromInt(25),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (f *fixture) adjustments(t *testing.T, itemID string) []model.InventoryAdjustment {
	t.Helper()
	rows, _, err := f.uc.ListAdjustments(context.Background(), owner, &dto.AdjustmentFilters{ItemID: itemID})
	if err != nil {
		t.Fatalf("ListAdjustments: %v", err)
	}
	return rows
}

func TestAdjustStock(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		delta   int
		want    int
		wantErr error
	}{
		{"decrement", 5, -2, 3, nil},
		{"decrement to zero", 5, -5, 0, nil},
		{"restock", 5, 10, 15, nil},
		{"below zero", 5, -6, 5, apperror.ErrInsufficientStock},
		{"zero delta", 5, 0, 5, apperror.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed("item-1", tt.start, 0)
			ctx := context.Background()

			_, err := f.uc.AdjustStock(ctx, owner, &dto.AdjustStockInput{ItemID: "item-1", Delta: tt.delta, Reason: "test"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("AdjustStock: %v", err)
			}

			item, err := f.uc.GetItem(ctx, owner, "item-1")
			if err != nil {
				t.Fatalf("GetItem: %v", err)
			}
			if item.Quantity != tt.want {
				t.Errorf("quantity = %d, want %d", item.Quantity, tt.want)
			}

			adjs := f.adjustments(t, "item-1")
			if tt.wantErr != nil && len(adjs) != 0 {
				t.Errorf("failed adjustment wrote %d audit rows", len(adjs))
			}
			if tt.wantErr == nil && len(adjs) != 1 {
				t.Errorf("got %d audit rows, want 1", len(adjs))
			}
		})
	}
}

func TestAdjustStockIsTenantScoped(t *testing.T) {
	f := newFixture(t)
	f.seed("item-1", 5, 0)

	other := model.Actor{TenantID: "garage-2", UserID: "user-9", Role: model.RoleOwner}
	_, err := f.uc.AdjustStock(context.Background(), other, &dto.AdjustStockInput{ItemID: "item-1", Delta: -1})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAdjustmentLogMatchesQuantity(t *testing.T) {
	f := newFixture(t)
	f.seed("item-1", 0, 0)
	ctx := context.Background()

	deltas := []int{10, -3, -8, 4, -20, 6}
	for _, d := range deltas {
		_, _ = f.uc.AdjustStock(ctx, owner, &dto.AdjustStockInput{ItemID: "item-1", Delta: d})
	}
	if _, err := f.uc.ForceSetQuantity(ctx, owner, &dto.ForceSetInput{ItemID: "item-1", Quantity: 2, Reason: "count"}); err != nil {
		t.Fatalf("ForceSetQuantity: %v", err)
	}
	_, _ = f.uc.AdjustStock(ctx, owner, &dto.AdjustStockInput{ItemID: "item-1", Delta: -1})

	item, err := f.uc.GetItem(ctx, owner, "item-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Quantity < 0 {
		t.Fatalf("quantity went negative: %d", item.Quantity)
	}

	sum := 0
	for _, a := range f.adjustments(t, "item-1") {
		if a.QuantityAfter != a.QuantityBefore+a.Delta {
			t.Errorf("adjustment %s: %d + %d != %d", a.ID, a.QuantityBefore, a.Delta, a.QuantityAfter)
		}
		sum += a.Delta
	}
	if sum != item.Quantity {
		t.Errorf("sum of deltas = %d, quantity = %d", sum, item.Quantity)
	}
	if item.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", item.Quantity)
	}
}

func TestForceSetQuantity(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		target    int
		want      int
		wantDelta int
		wantRows  int
	}{
		{"raise", 3, 10, 10, 7, 1},
		{"lower", 10, 4, 4, -6, 1},
		{"negative clamps to zero", 4, -5, 0, -4, 1},
		{"unchanged is a no-op", 4, 4, 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed("item-1", tt.start, 0)

			item, err := f.uc.ForceSetQuantity(context.Background(), owner, &dto.ForceSetInput{ItemID: "item-1", Quantity: tt.target})
			if err != nil {
				t.Fatalf("ForceSetQuantity: %v", err)
			}
			if item.Quantity != tt.want {
				t.Errorf("quantity = %d, want %d", item.Quantity, tt.want)
			}

			adjs := f.adjustments(t, "item-1")
			if len(adjs) != tt.wantRows {
				t.Fatalf("got %d audit rows, want %d", len(adjs), tt.wantRows)
			}
			if tt.wantRows == 1 && adjs[0].Delta != tt.wantDelta {
				t.Errorf("delta = %d, want %d", adjs[0].Delta, tt.wantDelta)
			}
		})
	}
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()

	t.Run("unreferenced item is deleted", func(t *testing.T) {
		f := newFixture(t)
		f.seed("item-1", 5, 0)
		if _, err := f.uc.AdjustStock(ctx, owner, &dto.AdjustStockInput{ItemID: "item-1", Delta: -2, Reason: "workshop use"}); err != nil {
			t.Fatalf("AdjustStock: %v", err)
		}

		if err := f.uc.DeleteItem(ctx, owner, "item-1"); err != nil {
			t.Fatalf("DeleteItem: %v", err)
		}
		if _, err := f.uc.GetItem(ctx, owner, "item-1"); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("GetItem after delete: err = %v, want ErrNotFound", err)
		}
		if rows := f.adjustments(t, "item-1"); len(rows) != 1 || rows[0].Delta != -2 {
			t.Errorf("adjustments after delete = %+v, want the one -2 entry", rows)
		}
	})

	t.Run("item on a job card is in use", func(t *testing.T) {
		f := newFixture(t)
		f.seed("item-1", 5, 0)
		err := f.store.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
			return repos.JobCards().AddPartLine(ctx, &model.JobPartLine{
				ID: "line-1", TenantID: owner.TenantID, JobCardID: "job-1", InventoryID: "item-1", Quantity: 1,
			})
		})
		if err != nil {
			t.Fatalf("seed part line: %v", err)
		}

		if err := f.uc.DeleteItem(ctx, owner, "item-1"); !errors.Is(err, apperror.ErrItemInUse) {
			t.Fatalf("err = %v, want ErrItemInUse", err)
		}
		if _, err := f.uc.GetItem(ctx, owner, "item-1"); err != nil {
			t.Errorf("item should still exist: %v", err)
		}
	})

	t.Run("item on an invoice is in use", func(t *testing.T) {
		f := newFixture(t)
		f.seed("item-1", 5, 0)
		itemID := "item-1"
		err := f.store.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
			return repos.Invoices().CreateItems(ctx, []model.InvoiceItem{
				{ID: "ii-1", TenantID: owner.TenantID, InvoiceID: "inv-1", Quantity: 1, InventoryID: &itemID},
			})
		})
		if err != nil {
			t.Fatalf("seed invoice item: %v", err)
		}

		if err := f.uc.DeleteItem(ctx, owner, "item-1"); !errors.Is(err, apperror.ErrItemInUse) {
			t.Fatalf("err = %v, want ErrItemInUse", err)
		}
	})
}

func TestListLowStock(t *testing.T) {
	f := newFixture(t)
	f.seed("ok", 10, 3)
	f.seed("at-level", 3, 3)
	f.seed("below", 1, 3)
	f.seed("empty", 0, 0)

	items, total, err := f.uc.ListLowStock(context.Background(), owner, 1, 50)
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	for _, it := range items {
		if it.ID == "ok" {
			t.Errorf("item above reorder level listed")
		}
	}
}

func TestAdjustStockEmitsLowStock(t *testing.T) {
	f := newFixture(t)
	f.seed("item-1", 5, 2)
	ctx := context.Background()

	if _, err := f.uc.AdjustStock(ctx, owner, &dto.AdjustStockInput{ItemID: "item-1", Delta: -1}); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if n := len(f.events.OfType(events.TypeLowStock)); n != 0 {
		t.Fatalf("low stock events = %d, want 0", n)
	}

	if _, err := f.uc.AdjustStock(ctx, owner, &dto.AdjustStockInput{ItemID: "item-1", Delta: -2}); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if n := len(f.events.OfType(events.TypeLowStock)); n != 1 {
		t.Errorf("low stock events = %d, want 1", n)
	}
	if n := len(f.events.OfType(events.TypeStockAdjusted)); n != 2 {
		t.Errorf("stock adjusted events = %d, want 2", n)
	}
}

func TestReceivePurchase(t *testing.T) {
	f := newFixture(t)
	f.seed("item-1", 2, 0)
	f.seed("item-2", 0, 0)
	ctx := context.Background()

	items, err := f.uc.ReceivePurchase(ctx, owner, &dto.ReceivePurchaseInput{
		PurchaseID: "po-1",
		Lines:      []dto.PurchaseLine{{PartCode: "P-item-1", Quantity: 8}, {PartCode: "P-item-2", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("ReceivePurchase: %v", err)
	}
	if len(items) != 2 || items[0].Quantity != 10 || items[1].Quantity != 3 {
		t.Errorf("restocked items = %+v, want quantities 10 and 3", items)
	}

	adjs := f.adjustments(t, "item-1")
	if len(adjs) != 1 || adjs[0].ReferenceID == nil || *adjs[0].ReferenceID != "po-1" {
		t.Errorf("adjustment does not reference the purchase: %+v", adjs)
	}

	tests := []struct {
		name    string
		lines   []dto.PurchaseLine
		wantErr error
	}{
		{"unknown part code", []dto.PurchaseLine{{PartCode: "P-item-1", Quantity: 1}, {PartCode: "missing", Quantity: 1}}, apperror.ErrNotFound},
		{"zero quantity", []dto.PurchaseLine{{PartCode: "P-item-1", Quantity: 0}}, apperror.ErrInvalidInput},
		{"no lines", nil, apperror.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.ReceivePurchase(ctx, owner, &dto.ReceivePurchaseInput{PurchaseID: "po-2", Lines: tt.lines})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			item, err := f.uc.GetItem(ctx, owner, "item-1")
			if err != nil {
				t.Fatalf("GetItem: %v", err)
			}
			if item.Quantity != 10 {
				t.Errorf("quantity = %d, want 10 after a rejected purchase", item.Quantity)
			}
		})
	}
}

func TestConcurrentAdjustmentsNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.seed("item-1", 5, 0)
	ctx := context.Background()

	const workers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, short int
		other     []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.AdjustStock(ctx, owner, &dto.AdjustStockInput{ItemID: "item-1", Delta: -1, Reason: "workshop use"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, apperror.ErrInsufficientStock):
				short++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if ok != 5 || short != workers-5 {
		t.Errorf("succeeded = %d, short = %d, want 5 and %d", ok, short, workers-5)
	}
	item, err := f.uc.GetItem(ctx, owner, "item-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Quantity != 0 {
		t.Errorf("quantity = %d, want 0", item.Quantity)
	}
	if rows := f.adjustments(t, "item-1"); len(rows) != 5 {
		t.Errorf("adjustments = %d, want 5", len(rows))
	}
}
