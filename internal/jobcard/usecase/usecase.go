package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/ledger"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice"
	invoicedto "github.com/GideonMwiti/garagemaster-sub000/internal/invoice/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/money"
	"github.com/GideonMwiti/garagemaster-sub000/internal/numbering"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type jobCardUseCase struct {
	tx      store.TxManager
	retry   store.RetryPolicy
	billing invoice.UseCase
	events  events.Publisher
	logger  logger.ZapLogger
}

func NewJobCardUseCase(tx store.TxManager, retry store.RetryPolicy, billing invoice.UseCase, pub events.Publisher, log logger.ZapLogger) jobcard.UseCase {
	return &jobCardUseCase{
		tx:      tx,
		retry:   retry,
		billing: billing,
		events:  pub,
		logger:  log,
	}
}

func (uc *jobCardUseCase) Create(ctx context.Context, actor model.Actor, input *dto.CreateJobCardInput) (*model.JobCard, error) {
	if input.VehicleID == "" || input.CustomerID == "" {
		return nil, apperror.New(apperror.ErrInvalidInput, "vehicle and customer are required")
	}
	if strings.TrimSpace(input.ProblemDescription) == "" {
		return nil, apperror.New(apperror.ErrInvalidInput, "problem description is required")
	}

	var job *model.JobCard
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		now := time.Now().UTC()
		number, err := numbering.Generate(ctx, repos.Sequences(), actor.TenantID, numbering.KindJobCard, numbering.PrefixJobCard, now)
		if err != nil {
			return err
		}

		job = &model.JobCard{
			ID:                 uuid.New().String(),
			TenantID:           actor.TenantID,
			Number:             number,
			VehicleID:          input.VehicleID,
			CustomerID:         input.CustomerID,
			AssignedTo:         input.AssignedTo,
			ProblemDescription: input.ProblemDescription,
			Status:             model.JobPending,
			CreatedBy:          actor.UserRef(),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if input.EstimatedHours != nil {
			job.EstimatedHours.Decimal, job.EstimatedHours.Valid = *input.EstimatedHours, true
		}
		if input.EstimatedCost != nil {
			job.EstimatedCost.Decimal, job.EstimatedCost.Valid = *input.EstimatedCost, true
		}
		return repos.JobCards().Create(ctx, job)
	})
	if err != nil {
		apperror.Log(uc.logger, "create job card failed", err, zap.String("tenant_id", actor.TenantID))
		return nil, err
	}

	events.Emit(ctx, uc.events, uc.logger, events.New(events.TypeJobCardCreated, actor.TenantID, job))
	return job, nil
}

func (uc *jobCardUseCase) Get(ctx context.Context, actor model.Actor, jobID string) (*model.JobCard, error) {
	repo := uc.tx.Repositories().JobCards()

	job, err := repo.GetByID(ctx, actor.TenantID, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NotFound("job card")
	}

	if job.Services, err = repo.ListServiceLines(ctx, actor.TenantID, jobID); err != nil {
		return nil, err
	}
	if job.Parts, err = repo.ListPartLines(ctx, actor.TenantID, jobID); err != nil {
		return nil, err
	}
	return job, nil
}

func (uc *jobCardUseCase) List(ctx context.Context, actor model.Actor, filters *dto.JobCardFilters) ([]model.JobCard, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperror.New(apperror.ErrInvalidInput, "unknown job status %q", filters.Status)
	}
	filters.TenantID = actor.TenantID
	return uc.tx.Repositories().JobCards().FindAll(ctx, filters)
}

func (uc *jobCardUseCase) Update(ctx context.Context, actor model.Actor, input *dto.UpdateJobCardInput) (*model.JobCard, error) {
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperror.New(apperror.ErrInvalidInput, "unknown job status %q", *input.Status)
		}
		if input.Status.Terminal() {
			return nil, apperror.New(apperror.ErrInvalidTransition, "use complete or cancel to close a job card")
		}
	}
	if input.ActualHours != nil && input.ActualHours.IsNegative() {
		return nil, apperror.New(apperror.ErrInvalidInput, "actual hours cannot be negative")
	}

	var job *model.JobCard
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		var err error
		job, err = lockEditable(ctx, repos, actor.TenantID, input.JobID)
		if err != nil {
			return err
		}

		if input.Status != nil {
			job.Status = *input.Status
		}
		if input.Diagnosis != nil {
			job.Diagnosis = input.Diagnosis
		}
		if input.ActualHours != nil {
			job.ActualHours.Decimal, job.ActualHours.Valid = *input.ActualHours, true
		}
		if input.AssignedTo != nil {
			job.AssignedTo = input.AssignedTo
		}
		job.UpdatedAt = time.Now().UTC()
		return repos.JobCards().Update(ctx, job)
	})
	if err != nil {
		apperror.Log(uc.logger, "update job card failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("job_id", input.JobID),
		)
		return nil, err
	}
	return job, nil
}

func (uc *jobCardUseCase) AddService(ctx context.Context, actor model.Actor, input *dto.AddServiceInput) (*model.JobServiceLine, error) {
	qty, err := lineQuantity(input.Quantity)
	if err != nil {
		return nil, err
	}

	var line *model.JobServiceLine
	err = store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		if _, err := lockEditable(ctx, repos, actor.TenantID, input.JobID); err != nil {
			return err
		}

		svc, err := repos.JobCards().GetService(ctx, actor.TenantID, input.ServiceID)
		if err != nil {
			return err
		}
		if svc == nil {
			return apperror.NotFound("service")
		}

		line = &model.JobServiceLine{
			ID:          uuid.New().String(),
			TenantID:    actor.TenantID,
			JobCardID:   input.JobID,
			ServiceID:   svc.ID,
			Description: svc.Name,
			Quantity:    qty,
			UnitPrice:   svc.Price,
			Price:       money.LineTotal(svc.Price, qty),
			Notes:       input.Notes,
			CreatedAt:   time.Now().UTC(),
		}
		return repos.JobCards().AddServiceLine(ctx, line)
	})
	if err != nil {
		apperror.Log(uc.logger, "add service line failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("job_id", input.JobID),
		)
		return nil, err
	}
	return line, nil
}

func (uc *jobCardUseCase) AddPart(ctx context.Context, actor model.Actor, input *dto.AddPartInput) (*model.JobPartLine, error) {
	qty, err := lineQuantity(input.Quantity)
	if err != nil {
		return nil, err
	}

	var (
		line  *model.JobPartLine
		stock *ledger.Result
	)
	err = store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		// 1. Job must still accept lines
		job, err := lockEditable(ctx, repos, actor.TenantID, input.JobID)
		if err != nil {
			return err
		}

		// 2. Take the parts out of stock
		stock, err = ledger.Adjust(ctx, repos.Inventory(), actor, ledger.Entry{
			ItemID:        input.InventoryID,
			Delta:         -qty,
			Reason:        fmt.Sprintf("used on job %s", job.Number),
			ReferenceType: model.ReferenceJobCard,
			ReferenceID:   job.ID,
		}, time.Now().UTC())
		if err != nil {
			return err
		}

		// 3. Record the line at the current selling price
		item := stock.Item
		line = &model.JobPartLine{
			ID:          uuid.New().String(),
			TenantID:    actor.TenantID,
			JobCardID:   job.ID,
			InventoryID: item.ID,
			Description: item.Name,
			Quantity:    qty,
			UnitPrice:   item.SellingPrice,
			Price:       money.LineTotal(item.SellingPrice, qty),
			Notes:       input.Notes,
			CreatedAt:   time.Now().UTC(),
		}
		return repos.JobCards().AddPartLine(ctx, line)
	})
	if err != nil {
		apperror.Log(uc.logger, "add part line failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("job_id", input.JobID),
			zap.String("inventory_id", input.InventoryID),
		)
		return nil, err
	}

	events.Emit(ctx, uc.events, uc.logger, ledger.Events(actor.TenantID, stock)...)
	return line, nil
}

func (uc *jobCardUseCase) RemoveLine(ctx context.Context, actor model.Actor, lineID string) error {
	var stock *ledger.Result
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		stock = nil
		repo := repos.JobCards()

		part, err := repo.GetPartLine(ctx, actor.TenantID, lineID)
		if err != nil {
			return err
		}
		if part != nil {
			if _, err := lockEditable(ctx, repos, actor.TenantID, part.JobCardID); err != nil {
				return err
			}
			stock, err = ledger.Adjust(ctx, repos.Inventory(), actor, ledger.Entry{
				ItemID:        part.InventoryID,
				Delta:         part.Quantity,
				Reason:        "line removed",
				ReferenceType: model.ReferenceJobLine,
				ReferenceID:   part.ID,
			}, time.Now().UTC())
			if err != nil {
				return err
			}
			return repo.DeletePartLine(ctx, actor.TenantID, lineID)
		}

		svc, err := repo.GetServiceLine(ctx, actor.TenantID, lineID)
		if err != nil {
			return err
		}
		if svc == nil {
			return apperror.NotFound("job card line")
		}
		if _, err := lockEditable(ctx, repos, actor.TenantID, svc.JobCardID); err != nil {
			return err
		}
		return repo.DeleteServiceLine(ctx, actor.TenantID, lineID)
	})
	if err != nil {
		apperror.Log(uc.logger, "remove job card line failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("line_id", lineID),
		)
		return err
	}

	events.Emit(ctx, uc.events, uc.logger, ledger.Events(actor.TenantID, stock)...)
	return nil
}

func (uc *jobCardUseCase) Complete(ctx context.Context, actor model.Actor, input *dto.CompleteInput) (*model.Invoice, error) {
	return uc.billing.GenerateFromJob(ctx, actor, input.JobID, &invoicedto.GenerateOptions{
		TaxRate: input.TaxRate,
		DueDate: input.DueDate,
		Notes:   input.Notes,
	})
}

// Cancel closes the job without returning its parts to stock.
func (uc *jobCardUseCase) Cancel(ctx context.Context, actor model.Actor, jobID string) (*model.JobCard, error) {
	var job *model.JobCard
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		var err error
		job, err = lockEditable(ctx, repos, actor.TenantID, jobID)
		if err != nil {
			return err
		}
		job.Status = model.JobCancelled
		job.UpdatedAt = time.Now().UTC()
		return repos.JobCards().Update(ctx, job)
	})
	if err != nil {
		apperror.Log(uc.logger, "cancel job card failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("job_id", jobID),
		)
		return nil, err
	}

	events.Emit(ctx, uc.events, uc.logger, events.New(events.TypeJobCardCancelled, actor.TenantID, job))
	return job, nil
}

// Delete removes a pending job and returns its parts to stock.
func (uc *jobCardUseCase) Delete(ctx context.Context, actor model.Actor, jobID string) error {
	var restocked []*ledger.Result
	err := store.Transact(ctx, uc.tx, uc.retry, func(ctx context.Context, repos store.Repositories) error {
		restocked = nil

		job, err := repos.JobCards().GetForUpdate(ctx, actor.TenantID, jobID)
		if err != nil {
			return err
		}
		if job == nil {
			return apperror.NotFound("job card")
		}
		if job.Status != model.JobPending {
			return apperror.New(apperror.ErrInvalidTransition, "only pending job cards can be deleted, %s is %s", job.Number, job.Status)
		}

		parts, err := repos.JobCards().ListPartLines(ctx, actor.TenantID, jobID)
		if err != nil {
			return err
		}
		for _, part := range parts {
			res, err := ledger.Adjust(ctx, repos.Inventory(), actor, ledger.Entry{
				ItemID:        part.InventoryID,
				Delta:         part.Quantity,
				Reason:        "job deleted",
				ReferenceType: model.ReferenceJobCard,
				ReferenceID:   job.ID,
			}, time.Now().UTC())
			if err != nil {
				return err
			}
			restocked = append(restocked, res)
		}

		return repos.JobCards().Delete(ctx, actor.TenantID, jobID)
	})
	if err != nil {
		apperror.Log(uc.logger, "delete job card failed", err,
			zap.String("tenant_id", actor.TenantID),
			zap.String("job_id", jobID),
		)
		return err
	}

	events.Emit(ctx, uc.events, uc.logger, ledger.Events(actor.TenantID, restocked...)...)
	return nil
}

// lockEditable locks the job row and checks it still accepts changes.
func lockEditable(ctx context.Context, repos store.Repositories, tenantID, jobID string) (*model.JobCard, error) {
	job, err := repos.JobCards().GetForUpdate(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NotFound("job card")
	}
	if job.Status.Terminal() {
		return nil, apperror.New(apperror.ErrInvalidTransition, "job card %s is %s and can no longer be changed", job.Number, job.Status)
	}
	return job, nil
}

func lineQuantity(q int) (int, error) {
	switch {
	case q == 0:
		return 1, nil
	case q < 0:
		return 0, apperror.New(apperror.ErrInvalidInput, "quantity must be positive")
	}
	return q, nil
}
