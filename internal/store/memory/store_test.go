package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
)

func seeded() *Store {
	s := New()
	s.SeedItem(model.InventoryItem{ID: "item-1", TenantID: "garage-1", PartCode: "P-1", Quantity: 5})
	return s
}

func quantity(t *testing.T, s *Store) int {
	t.Helper()
	item, err := s.Repositories().Inventory().GetByID(context.Background(), "garage-1", "item-1")
	if err != nil || item == nil {
		t.Fatalf("GetByID: %v", err)
	}
	return item.Quantity
}

func TestWithinTxRollsBack(t *testing.T) {
	s := seeded()
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, repos store.Repositories) error {
		item, _ := repos.Inventory().GetForUpdate(ctx, "garage-1", "item-1")
		item.Quantity = 1
		if err := repos.Inventory().UpdateQuantity(ctx, item); err != nil {
			return err
		}
		if _, err := repos.Sequences().Next(ctx, "garage-1", "invoice", "20260101"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if q := quantity(t, s); q != 5 {
		t.Errorf("quantity = %d, want 5", q)
	}

	seq, err := s.Repositories().Sequences().Next(context.Background(), "garage-1", "invoice", "20260101")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if seq != 1 {
		t.Errorf("sequence = %d, want 1 after rollback", seq)
	}
}

func TestWithinTxCommits(t *testing.T) {
	s := seeded()
	err := s.WithinTx(context.Background(), func(ctx context.Context, repos store.Repositories) error {
		item, _ := repos.Inventory().GetForUpdate(ctx, "garage-1", "item-1")
		item.Quantity = 9
		return repos.Inventory().UpdateQuantity(ctx, item)
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	if q := quantity(t, s); q != 9 {
		t.Errorf("quantity = %d, want 9", q)
	}
}

func TestFailOn(t *testing.T) {
	s := seeded()
	boom := errors.New("connection reset")
	s.FailOn("inventory.GetByID", boom)

	if _, err := s.Repositories().Inventory().GetByID(context.Background(), "garage-1", "item-1"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want injected failure", err)
	}
	// Other ops are unaffected.
	if _, err := s.Repositories().Inventory().GetForUpdate(context.Background(), "garage-1", "item-1"); err != nil {
		t.Errorf("GetForUpdate: %v", err)
	}

	s.ClearFailures()
	if q := quantity(t, s); q != 5 {
		t.Errorf("quantity = %d, want 5", q)
	}
}

func TestFailAfter(t *testing.T) {
	s := seeded()
	boom := errors.New("connection reset")
	s.FailAfter("inventory.GetByID", 2, boom)

	repo := s.Repositories().Inventory()
	for i := 0; i < 2; i++ {
		if _, err := repo.GetByID(context.Background(), "garage-1", "item-1"); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
	if _, err := repo.GetByID(context.Background(), "garage-1", "item-1"); !errors.Is(err, boom) {
		t.Errorf("third call: err = %v, want injected failure", err)
	}
}

func TestSequencesAreScoped(t *testing.T) {
	s := New()
	seqs := s.Repositories().Sequences()
	ctx := context.Background()

	next := func(tenant, kind, period string) int64 {
		t.Helper()
		n, err := seqs.Next(ctx, tenant, kind, period)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		return n
	}

	if n := next("garage-1", "invoice", "20260101"); n != 1 {
		t.Errorf("first = %d, want 1", n)
	}
	if n := next("garage-1", "invoice", "20260101"); n != 2 {
		t.Errorf("second = %d, want 2", n)
	}
	if n := next("garage-1", "payment", "20260101"); n != 1 {
		t.Errorf("other kind = %d, want 1", n)
	}
	if n := next("garage-2", "invoice", "20260101"); n != 1 {
		t.Errorf("other tenant = %d, want 1", n)
	}
	if n := next("garage-1", "invoice", "20260102"); n != 1 {
		t.Errorf("next day = %d, want 1", n)
	}
}

func TestConcurrentSequencesAreUnique(t *testing.T) {
	s := New()
	const workers = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(context.Background(), func(ctx context.Context, repos store.Repositories) error {
				n, err := repos.Sequences().Next(ctx, "garage-1", "job_card", "20260101")
				if err != nil {
					return err
				}
				mu.Lock()
				seen[n] = true
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if len(seen) != workers {
		t.Errorf("unique numbers = %d, want %d", len(seen), workers)
	}
}
