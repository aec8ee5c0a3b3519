package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB sqlx.ExtContext
}

func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, job *model.JobCard) error {
	query := `
        INSERT INTO job_cards (
            id, tenant_id, number, vehicle_id, customer_id, assigned_to,
            problem_description, diagnosis, status, estimated_hours, actual_hours,
            estimated_cost, created_by, created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :number, :vehicle_id, :customer_id, :assigned_to,
            :problem_description, :diagnosis, :status, :estimated_hours, :actual_hours,
            :estimated_cost, :created_by, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, job)
	if postgres.IsUniqueViolation(err) {
		return apperror.New(apperror.ErrDuplicateNumber, "job card number %s already exists", job.Number)
	}
	return err
}

func (r *PGRepository) GetByID(ctx context.Context, tenantID, jobID string) (*model.JobCard, error) {
	return r.getOne(ctx, `SELECT * FROM job_cards WHERE tenant_id = $1 AND id = $2`, tenantID, jobID)
}

func (r *PGRepository) GetForUpdate(ctx context.Context, tenantID, jobID string) (*model.JobCard, error) {
	return r.getOne(ctx, `SELECT * FROM job_cards WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, jobID)
}

func (r *PGRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.JobCard, error) {
	var job model.JobCard
	if err := sqlx.GetContext(ctx, r.DB, &job, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.JobCardFilters) ([]model.JobCard, int, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	if f.VehicleID != "" {
		conditions = append(conditions, "vehicle_id = :vehicle_id")
		args["vehicle_id"] = f.VehicleID
	}
	if f.AssignedTo != "" {
		conditions = append(conditions, "assigned_to = :assigned_to")
		args["assigned_to"] = f.AssignedTo
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	if err := postgres.NamedGet(ctx, r.DB, &count, "SELECT count(*) FROM job_cards"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM job_cards" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		query += postgres.PageClause(f.Page, f.PageSize)
	}

	var jobs []model.JobCard
	if err := postgres.NamedSelect(ctx, r.DB, &jobs, query, args); err != nil {
		return nil, 0, err
	}
	return jobs, count, nil
}

func (r *PGRepository) Update(ctx context.Context, job *model.JobCard) error {
	query := `
        UPDATE job_cards
        SET status = :status,
            diagnosis = :diagnosis,
            actual_hours = :actual_hours,
            assigned_to = :assigned_to,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, job)
	return err
}

// Delete relies on ON DELETE CASCADE for the line tables.
func (r *PGRepository) Delete(ctx context.Context, tenantID, jobID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM job_cards WHERE tenant_id = $1 AND id = $2`, tenantID, jobID)
	return err
}

func (r *PGRepository) GetService(ctx context.Context, tenantID, serviceID string) (*model.ServiceItem, error) {
	var svc model.ServiceItem
	err := sqlx.GetContext(ctx, r.DB, &svc, `SELECT id, tenant_id, name, price FROM services WHERE tenant_id = $1 AND id = $2`, tenantID, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &svc, nil
}

func (r *PGRepository) AddServiceLine(ctx context.Context, line *model.JobServiceLine) error {
	query := `
        INSERT INTO job_service_lines (
            id, tenant_id, job_card_id, service_id, description, quantity,
            unit_price, price, notes, created_at
        )
        VALUES (
            :id, :tenant_id, :job_card_id, :service_id, :description, :quantity,
            :unit_price, :price, :notes, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, line)
	return err
}

func (r *PGRepository) AddPartLine(ctx context.Context, line *model.JobPartLine) error {
	query := `
        INSERT INTO job_part_lines (
            id, tenant_id, job_card_id, inventory_id, description, quantity,
            unit_price, price, notes, created_at
        )
        VALUES (
            :id, :tenant_id, :job_card_id, :inventory_id, :description, :quantity,
            :unit_price, :price, :notes, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, line)
	return err
}

func (r *PGRepository) ListServiceLines(ctx context.Context, tenantID, jobID string) ([]model.JobServiceLine, error) {
	var lines []model.JobServiceLine
	err := sqlx.SelectContext(ctx, r.DB, &lines,
		`SELECT * FROM job_service_lines WHERE tenant_id = $1 AND job_card_id = $2 ORDER BY created_at, id`, tenantID, jobID)
	return lines, err
}

func (r *PGRepository) ListPartLines(ctx context.Context, tenantID, jobID string) ([]model.JobPartLine, error) {
	var lines []model.JobPartLine
	err := sqlx.SelectContext(ctx, r.DB, &lines,
		`SELECT * FROM job_part_lines WHERE tenant_id = $1 AND job_card_id = $2 ORDER BY created_at, id`, tenantID, jobID)
	return lines, err
}

func (r *PGRepository) GetServiceLine(ctx context.Context, tenantID, lineID string) (*model.JobServiceLine, error) {
	var line model.JobServiceLine
	err := sqlx.GetContext(ctx, r.DB, &line, `SELECT * FROM job_service_lines WHERE tenant_id = $1 AND id = $2`, tenantID, lineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (r *PGRepository) GetPartLine(ctx context.Context, tenantID, lineID string) (*model.JobPartLine, error) {
	var line model.JobPartLine
	err := sqlx.GetContext(ctx, r.DB, &line, `SELECT * FROM job_part_lines WHERE tenant_id = $1 AND id = $2`, tenantID, lineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (r *PGRepository) DeleteServiceLine(ctx context.Context, tenantID, lineID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM job_service_lines WHERE tenant_id = $1 AND id = $2`, tenantID, lineID)
	return err
}

func (r *PGRepository) DeletePartLine(ctx context.Context, tenantID, lineID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM job_part_lines WHERE tenant_id = $1 AND id = $2`, tenantID, lineID)
	return err
}
