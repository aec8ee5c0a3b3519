package dto

import "github.com/GideonMwiti/garagemaster-sub000/internal/model"

type JobCardFilters struct {
	TenantID   string
	Status     model.JobStatus
	CustomerID string
	VehicleID  string
	AssignedTo string
	Page       int
	PageSize   int
}
