package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice"
	invoiceuc "github.com/GideonMwiti/garagemaster-sub000/internal/invoice/usecase"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard"
	jobdto "github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/settings"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store/memory"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/shopspring/decimal"
)

var owner = model.Actor{TenantID: "garage-1", UserID: "user-1", Role: model.RoleOwner}

type fixture struct {
	store   *memory.Store
	events  *events.Recorder
	billing invoice.UseCase
	uc      jobcard.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.New()
	rec := events.NewRecorder()
	sp := settings.NewStatic(settings.Defaults{TaxRate: decimal.NewFromInt(10), InvoicePrefix: "INV", PaymentTermsDays: 7})
	policy := store.RetryPolicy{Attempts: 1}
	billing := invoiceuc.NewInvoiceUseCase(s, policy, sp, rec, logger.NewNop())

	s.SeedService(model.ServiceItem{ID: "svc-service", TenantID: owner.TenantID, Name: "Full service", Price: decimal.NewFromInt(100)})
	s.SeedItem(model.InventoryItem{
		ID: "item-pad", TenantID: owner.TenantID, PartCode: "BRK-01", Name: "Brake pad",
		Quantity: 5, ReorderLevel: 1, UnitCost: decimal.NewFromInt(15), SellingPrice: decimal.NewFromInt(25),
	})

	return &fixture{
		store:   s,
		events:  rec,
		billing: billing,
		uc:      NewJobCardUseCase(s, policy, billing, rec, logger.NewNop()),
	}
}

func (f *fixture) newJob(t *testing.T) *model.JobCard {
	t.Helper()
	job, err := f.uc.Create(context.Background(), owner, &jobdto.CreateJobCardInput{
		VehicleID:          "vehicle-1",
		CustomerID:         "customer-1",
		ProblemDescription: "Squealing brakes",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return job
}

func (f *fixture) stock(t *testing.T, itemID string) int {
	t.Helper()
	item, err := f.store.Repositories().Inventory().GetByID(context.Background(), owner.TenantID, itemID)
	if err != nil || item == nil {
		t.Fatalf("GetByID(%s): %v", itemID, err)
	}
	return item.Quantity
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateAssignsNumberAndPending(t *testing.T) {
	f := newFixture(t)
	first := f.newJob(t)
	second := f.newJob(t)

	if first.Status != model.JobPending {
		t.Errorf("status = %s, want pending", first.Status)
	}
	if !strings.HasPrefix(first.Number, "JOB-") || !strings.HasSuffix(first.Number, "-0001") {
		t.Errorf("number = %q, want JOB-YYYYMMDD-0001", first.Number)
	}
	if first.Number == second.Number {
		t.Errorf("duplicate job numbers %q", first.Number)
	}

	_, err := f.uc.Create(context.Background(), owner, &jobdto.CreateJobCardInput{VehicleID: "v", CustomerID: "c"})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("missing problem description: err = %v, want ErrInvalidInput", err)
	}
}

func TestCompleteProducesInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.newJob(t)

	if _, err := f.uc.AddService(ctx, owner, &jobdto.AddServiceInput{JobID: job.ID, ServiceID: "svc-service", Quantity: 1}); err != nil {
		t.Fatalf("AddService: %v", err)
	}
	if _, err := f.uc.AddPart(ctx, owner, &jobdto.AddPartInput{JobID: job.ID, InventoryID: "item-pad", Quantity: 2}); err != nil {
		t.Fatalf("AddPart: %v", err)
	}

	got, err := f.uc.Get(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.ServicesTotal().Equal(d("100")) || !got.PartsTotal().Equal(d("50")) || !got.Total().Equal(d("150")) {
		t.Errorf("totals = %s + %s = %s, want 100 + 50 = 150", got.ServicesTotal(), got.PartsTotal(), got.Total())
	}

	inv, err := f.uc.Complete(ctx, owner, &jobdto.CompleteInput{JobID: job.ID})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !inv.Subtotal.Equal(d("150")) || !inv.TaxAmount.Equal(d("15")) || !inv.TotalAmount.Equal(d("165")) {
		t.Errorf("invoice = %s + %s = %s, want 150 + 15 = 165", inv.Subtotal, inv.TaxAmount, inv.TotalAmount)
	}
	if inv.Status != model.InvoiceSent {
		t.Errorf("invoice status = %s, want sent", inv.Status)
	}
	if len(inv.Items) != 2 {
		t.Errorf("invoice items = %d, want 2", len(inv.Items))
	}
	if inv.JobCardID == nil || *inv.JobCardID != job.ID {
		t.Errorf("invoice not linked to job")
	}

	got, err = f.uc.Get(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.JobCompleted {
		t.Errorf("job status = %s, want completed", got.Status)
	}

	if _, err := f.uc.Complete(ctx, owner, &jobdto.CompleteInput{JobID: job.ID}); !errors.Is(err, apperror.ErrInvalidTransition) {
		t.Errorf("second Complete: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.uc.AddPart(ctx, owner, &jobdto.AddPartInput{JobID: job.ID, InventoryID: "item-pad", Quantity: 1}); !errors.Is(err, apperror.ErrInvalidTransition) {
		t.Errorf("AddPart on completed job: err = %v, want ErrInvalidTransition", err)
	}
	if n := len(f.events.OfType(events.TypeInvoiceCreated)); n != 1 {
		t.Errorf("invoice created events = %d, want 1", n)
	}
}

func TestCompleteOverridesTaxAndDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.newJob(t)
	if _, err := f.uc.AddService(ctx, owner, &jobdto.AddServiceInput{JobID: job.ID, ServiceID: "svc-service", Quantity: 2}); err != nil {
		t.Fatalf("AddService: %v", err)
	}

	rate := d("16")
	due := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)
	inv, err := f.uc.Complete(ctx, owner, &jobdto.CompleteInput{JobID: job.ID, TaxRate: &rate, DueDate: &due})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !inv.TaxAmount.Equal(d("32")) || !inv.TotalAmount.Equal(d("232")) {
		t.Errorf("tax/total = %s/%s, want 32/232", inv.TaxAmount, inv.TotalAmount)
	}
	if !inv.DueDate.Equal(due) {
		t.Errorf("due date = %s, want %s", inv.DueDate, due)
	}
}

func TestAddPartInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.newJob(t)

	_, err := f.uc.AddPart(ctx, owner, &jobdto.AddPartInput{JobID: job.ID, InventoryID: "item-pad", Quantity: 6})
	if !errors.Is(err, apperror.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if q := f.stock(t, "item-pad"); q != 5 {
		t.Errorf("stock = %d, want 5", q)
	}
	got, err := f.uc.Get(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Parts) != 0 {
		t.Errorf("part lines = %d, want 0", len(got.Parts))
	}
}

func TestPartLineKeepsPriceSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.newJob(t)

	if _, err := f.uc.AddPart(ctx, owner, &jobdto.AddPartInput{JobID: job.ID, InventoryID: "item-pad", Quantity: 2}); err != nil {
		t.Fatalf("AddPart: %v", err)
	}

	// Reprice the part in the catalog.
	f.store.SeedItem(model.InventoryItem{
		ID: "item-pad", TenantID: owner.TenantID, PartCode: "BRK-01", Name: "Brake pad",
		Quantity: 3, SellingPrice: decimal.NewFromInt(40),
	})

	got, err := f.uc.Get(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.PartsTotal().Equal(d("50")) {
		t.Errorf("parts total = %s, want 50", got.PartsTotal())
	}
}

func TestRemoveLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.newJob(t)

	part, err := f.uc.AddPart(ctx, owner, &jobdto.AddPartInput{JobID: job.ID, InventoryID: "item-pad", Quantity: 2})
	if err != nil {
		t.Fatalf("AddPart: %v", err)
	}
	svc, err := f.uc.AddService(ctx, owner, &jobdto.AddServiceInput{JobID: job.ID, ServiceID: "svc-service"})
	if err != nil {
		t.Fatalf("AddService: %v", err)
	}
	if q := f.stock(t, "item-pad"); q != 3 {
		t.Fatalf("stock after AddPart = %d, want 3", q)
	}

	if err := f.uc.RemoveLine(ctx, owner, part.ID); err != nil {
		t.Fatalf("RemoveLine(part): %v", err)
	}
	if q := f.stock(t, "item-pad"); q != 5 {
		t.Errorf("stock after RemoveLine = %d, want 5", q)
	}
	if err := f.uc.RemoveLine(ctx, owner, svc.ID); err != nil {
		t.Fatalf("RemoveLine(service): %v", err)
	}

	got, err := f.uc.Get(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Parts)+len(got.Services) != 0 {
		t.Errorf("lines left = %d, want 0", len(got.Parts)+len(got.Services))
	}

	adjs, _, err := f.store.Repositories().Inventory().ListAdjustments(ctx, &dto.AdjustmentFilters{TenantID: owner.TenantID, ItemID: "item-pad"})
	if err != nil {
		t.Fatalf("ListAdjustments: %v", err)
	}
	if len(adjs) != 2 || adjs[0].Reason != "line removed" || adjs[0].Delta != 2 {
		t.Errorf("compensating adjustment missing: %+v", adjs)
	}

	if err := f.uc.RemoveLine(ctx, owner, "no-such-line"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown line: err = %v, want ErrNotFound", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	status := func(s model.JobStatus) *model.JobStatus { return &s }

	tests := []struct {
		name    string
		steps   []model.JobStatus
		wantErr error
	}{
		{"pending to in progress", []model.JobStatus{model.JobInProgress}, nil},
		{"in progress to waiting parts and back", []model.JobStatus{model.JobInProgress, model.JobWaitingParts, model.JobInProgress}, nil},
		{"back to pending", []model.JobStatus{model.JobInProgress, model.JobPending}, nil},
		{"completed only through Complete", []model.JobStatus{model.JobCompleted}, apperror.ErrInvalidTransition},
		{"cancelled only through Cancel", []model.JobStatus{model.JobCancelled}, apperror.ErrInvalidTransition},
		{"unknown status", []model.JobStatus{"parked"}, apperror.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			job := f.newJob(t)

			var err error
			for _, s := range tt.steps {
				if _, err = f.uc.Update(context.Background(), owner, &jobdto.UpdateJobCardInput{JobID: job.ID, Status: status(s)}); err != nil {
					break
				}
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Update: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.newJob(t)

	if _, err := f.uc.AddPart(ctx, owner, &jobdto.AddPartInput{JobID: job.ID, InventoryID: "item-pad", Quantity: 2}); err != nil {
		t.Fatalf("AddPart: %v", err)
	}
	cancelled, err := f.uc.Cancel(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != model.JobCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if q := f.stock(t, "item-pad"); q != 3 {
		t.Errorf("stock = %d, want 3 (cancel does not restock)", q)
	}

	if _, err := f.uc.Cancel(ctx, owner, job.ID); !errors.Is(err, apperror.ErrInvalidTransition) {
		t.Errorf("second Cancel: err = %v, want ErrInvalidTransition", err)
	}
	diag := "worn pads"
	if _, err := f.uc.Update(ctx, owner, &jobdto.UpdateJobCardInput{JobID: job.ID, Diagnosis: &diag}); !errors.Is(err, apperror.ErrInvalidTransition) {
		t.Errorf("Update on cancelled job: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.uc.Complete(ctx, owner, &jobdto.CompleteInput{JobID: job.ID}); !errors.Is(err, apperror.ErrInvalidTransition) {
		t.Errorf("Complete on cancelled job: err = %v, want ErrInvalidTransition", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("pending job is removed and restocked", func(t *testing.T) {
		f := newFixture(t)
		job := f.newJob(t)
		if _, err := f.uc.AddPart(ctx, owner, &jobdto.AddPartInput{JobID: job.ID, InventoryID: "item-pad", Quantity: 4}); err != nil {
			t.Fatalf("AddPart: %v", err)
		}

		if err := f.uc.Delete(ctx, owner, job.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := f.uc.Get(ctx, owner, job.ID); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
		}
		if q := f.stock(t, "item-pad"); q != 5 {
			t.Errorf("stock = %d, want 5", q)
		}
	})

	t.Run("started job cannot be deleted", func(t *testing.T) {
		f := newFixture(t)
		job := f.newJob(t)
		started := model.JobInProgress
		if _, err := f.uc.Update(ctx, owner, &jobdto.UpdateJobCardInput{JobID: job.ID, Status: &started}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if err := f.uc.Delete(ctx, owner, job.ID); !errors.Is(err, apperror.ErrInvalidTransition) {
			t.Errorf("err = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestCompleteIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.newJob(t)
	if _, err := f.uc.AddService(ctx, owner, &jobdto.AddServiceInput{JobID: job.ID, ServiceID: "svc-service"}); err != nil {
		t.Fatalf("AddService: %v", err)
	}

	boom := errors.New("disk full")
	f.store.FailOn("jobcards.Update", boom)

	if _, err := f.uc.Complete(ctx, owner, &jobdto.CompleteInput{JobID: job.ID}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	existing, err := f.store.Repositories().Invoices().GetByJobCard(ctx, owner.TenantID, job.ID)
	if err != nil {
		t.Fatalf("GetByJobCard: %v", err)
	}
	if existing != nil {
		t.Fatalf("invoice %s survived a failed completion", existing.Number)
	}
	got, err := f.uc.Get(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.JobPending {
		t.Errorf("job status = %s, want pending", got.Status)
	}

	f.store.ClearFailures()
	inv, err := f.uc.Complete(ctx, owner, &jobdto.CompleteInput{JobID: job.ID})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.HasSuffix(inv.Number, "-0001") {
		t.Errorf("number = %q, want the rolled back sequence value to be reused", inv.Number)
	}
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)
	job := f.newJob(t)

	other := model.Actor{TenantID: "garage-2", UserID: "user-2", Role: model.RoleOwner}
	if _, err := f.uc.Get(context.Background(), other, job.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get from other tenant: err = %v, want ErrNotFound", err)
	}
	jobs, total, err := f.uc.List(context.Background(), other, &jobdto.JobCardFilters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 || len(jobs) != 0 {
		t.Errorf("other tenant sees %d jobs", total)
	}
}
