package jobcard

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type UseCase interface {
	Create(ctx context.Context, actor model.Actor, input *dto.CreateJobCardInput) (*model.JobCard, error)
	Get(ctx context.Context, actor model.Actor, jobID string) (*model.JobCard, error)
	List(ctx context.Context, actor model.Actor, filters *dto.JobCardFilters) ([]model.JobCard, int, error)
	Update(ctx context.Context, actor model.Actor, input *dto.UpdateJobCardInput) (*model.JobCard, error)
	AddService(ctx context.Context, actor model.Actor, input *dto.AddServiceInput) (*model.JobServiceLine, error)
	AddPart(ctx context.Context, actor model.Actor, input *dto.AddPartInput) (*model.JobPartLine, error)
	RemoveLine(ctx context.Context, actor model.Actor, lineID string) error
	Complete(ctx context.Context, actor model.Actor, input *dto.CompleteInput) (*model.Invoice, error)
	Cancel(ctx context.Context, actor model.Actor, jobID string) (*model.JobCard, error)
	Delete(ctx context.Context, actor model.Actor, jobID string) error
}
