package jobcard

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type Repository interface {
	Create(ctx context.Context, job *model.JobCard) error
	GetByID(ctx context.Context, tenantID, jobID string) (*model.JobCard, error)
	GetForUpdate(ctx context.Context, tenantID, jobID string) (*model.JobCard, error)
	FindAll(ctx context.Context, filters *dto.JobCardFilters) ([]model.JobCard, int, error)
	Update(ctx context.Context, job *model.JobCard) error
	// Delete removes the job together with its lines.
	Delete(ctx context.Context, tenantID, jobID string) error

	GetService(ctx context.Context, tenantID, serviceID string) (*model.ServiceItem, error)

	AddServiceLine(ctx context.Context, line *model.JobServiceLine) error
	AddPartLine(ctx context.Context, line *model.JobPartLine) error
	ListServiceLines(ctx context.Context, tenantID, jobID string) ([]model.JobServiceLine, error)
	ListPartLines(ctx context.Context, tenantID, jobID string) ([]model.JobPartLine, error)
	GetServiceLine(ctx context.Context, tenantID, lineID string) (*model.JobServiceLine, error)
	GetPartLine(ctx context.Context, tenantID, lineID string) (*model.JobPartLine, error)
	DeleteServiceLine(ctx context.Context, tenantID, lineID string) error
	DeletePartLine(ctx context.Context, tenantID, lineID string) error
}
