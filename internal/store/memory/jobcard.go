package memory

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type jobRepo struct {
	*repositories
}

func (r *jobRepo) Create(_ context.Context, job *model.JobCard) error {
	release, err := r.enter("jobcards.Create")
	defer release()
	if err != nil {
		return err
	}
	for _, existing := range r.s.data.jobs {
		if existing.TenantID == job.TenantID && existing.Number == job.Number {
			return apperror.New(apperror.ErrDuplicateNumber, "job card number %s already exists", job.Number)
		}
	}
	stored := *job
	stored.Services, stored.Parts = nil, nil
	r.s.data.jobs[job.ID] = stored
	return nil
}

func (r *jobRepo) GetByID(_ context.Context, tenantID, jobID string) (*model.JobCard, error) {
	release, err := r.enter("jobcards.GetByID")
	defer release()
	if err != nil {
		return nil, err
	}
	return r.get(tenantID, jobID), nil
}

func (r *jobRepo) GetForUpdate(_ context.Context, tenantID, jobID string) (*model.JobCard, error) {
	release, err := r.enter("jobcards.GetForUpdate")
	defer release()
	if err != nil {
		return nil, err
	}
	return r.get(tenantID, jobID), nil
}

func (r *jobRepo) get(tenantID, jobID string) *model.JobCard {
	job, ok := r.s.data.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return nil
	}
	return &job
}

func (r *jobRepo) FindAll(_ context.Context, f *dto.JobCardFilters) ([]model.JobCard, int, error) {
	release, err := r.enter("jobcards.FindAll")
	defer release()
	if err != nil {
		return nil, 0, err
	}

	var rows []model.JobCard
	for _, job := range r.s.data.jobs {
		if job.TenantID != f.TenantID {
			continue
		}
		if f.Status != "" && job.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && job.CustomerID != f.CustomerID {
			continue
		}
		if f.VehicleID != "" && job.VehicleID != f.VehicleID {
			continue
		}
		if f.AssignedTo != "" && (job.AssignedTo == nil || *job.AssignedTo != f.AssignedTo) {
			continue
		}
		rows = append(rows, job)
	}
	sortByCreated(rows, func(j model.JobCard) (int64, string) { return j.CreatedAt.UnixNano(), j.ID })
	return paginate(rows, f.Page, f.PageSize), len(rows), nil
}

func (r *jobRepo) Update(_ context.Context, job *model.JobCard) error {
	release, err := r.enter("jobcards.Update")
	defer release()
	if err != nil {
		return err
	}
	if current, ok := r.s.data.jobs[job.ID]; ok && current.TenantID == job.TenantID {
		stored := *job
		stored.Services, stored.Parts = nil, nil
		r.s.data.jobs[job.ID] = stored
	}
	return nil
}

func (r *jobRepo) Delete(_ context.Context, tenantID, jobID string) error {
	release, err := r.enter("jobcards.Delete")
	defer release()
	if err != nil {
		return err
	}
	job, ok := r.s.data.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return nil
	}
	delete(r.s.data.jobs, jobID)
	for id, l := range r.s.data.serviceLines {
		if l.JobCardID == jobID {
			delete(r.s.data.serviceLines, id)
		}
	}
	for id, l := range r.s.data.partLines {
		if l.JobCardID == jobID {
			delete(r.s.data.partLines, id)
		}
	}
	return nil
}

func (r *jobRepo) GetService(_ context.Context, tenantID, serviceID string) (*model.ServiceItem, error) {
	release, err := r.enter("jobcards.GetService")
	defer release()
	if err != nil {
		return nil, err
	}
	svc, ok := r.s.data.services[serviceID]
	if !ok || svc.TenantID != tenantID {
		return nil, nil
	}
	return &svc, nil
}

func (r *jobRepo) AddServiceLine(_ context.Context, line *model.JobServiceLine) error {
	release, err := r.enter("jobcards.AddServiceLine")
	defer release()
	if err != nil {
		return err
	}
	r.s.data.serviceLines[line.ID] = *line
	return nil
}

func (r *jobRepo) AddPartLine(_ context.Context, line *model.JobPartLine) error {
	release, err := r.enter("jobcards.AddPartLine")
	defer release()
	if err != nil {
		return err
	}
	r.s.data.partLines[line.ID] = *line
	return nil
}

func (r *jobRepo) ListServiceLines(_ context.Context, tenantID, jobID string) ([]model.JobServiceLine, error) {
	release, err := r.enter("jobcards.ListServiceLines")
	defer release()
	if err != nil {
		return nil, err
	}
	var rows []model.JobServiceLine
	for _, l := range r.s.data.serviceLines {
		if l.TenantID == tenantID && l.JobCardID == jobID {
			rows = append(rows, l)
		}
	}
	sortByCreated(rows, func(l model.JobServiceLine) (int64, string) { return -l.CreatedAt.UnixNano(), l.ID })
	return rows, nil
}

func (r *jobRepo) ListPartLines(_ context.Context, tenantID, jobID string) ([]model.JobPartLine, error) {
	release, err := r.enter("jobcards.ListPartLines")
	defer release()
	if err != nil {
		return nil, err
	}
	var rows []model.JobPartLine
	for _, l := range r.s.data.partLines {
		if l.TenantID == tenantID && l.JobCardID == jobID {
			rows = append(rows, l)
		}
	}
	sortByCreated(rows, func(l model.JobPartLine) (int64, string) { return -l.CreatedAt.UnixNano(), l.ID })
	return rows, nil
}

func (r *jobRepo) GetServiceLine(_ context.Context, tenantID, lineID string) (*model.JobServiceLine, error) {
	release, err := r.enter("jobcards.GetServiceLine")
	defer release()
	if err != nil {
		return nil, err
	}
	l, ok := r.s.data.serviceLines[lineID]
	if !ok || l.TenantID != tenantID {
		return nil, nil
	}
	return &l, nil
}

func (r *jobRepo) GetPartLine(_ context.Context, tenantID, lineID string) (*model.JobPartLine, error) {
	release, err := r.enter("jobcards.GetPartLine")
	defer release()
	if err != nil {
		return nil, err
	}
	l, ok := r.s.data.partLines[lineID]
	if !ok || l.TenantID != tenantID {
		return nil, nil
	}
	return &l, nil
}

func (r *jobRepo) DeleteServiceLine(_ context.Context, tenantID, lineID string) error {
	release, err := r.enter("jobcards.DeleteServiceLine")
	defer release()
	if err != nil {
		return err
	}
	if l, ok := r.s.data.serviceLines[lineID]; ok && l.TenantID == tenantID {
		delete(r.s.data.serviceLines, lineID)
	}
	return nil
}

func (r *jobRepo) DeletePartLine(_ context.Context, tenantID, lineID string) error {
	release, err := r.enter("jobcards.DeletePartLine")
	defer release()
	if err != nil {
		return err
	}
	if l, ok := r.s.data.partLines[lineID]; ok && l.TenantID == tenantID {
		delete(r.s.data.partLines, lineID)
	}
	return nil
}
