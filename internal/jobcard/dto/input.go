package dto

import (
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/shopspring/decimal"
)

type CreateJobCardInput struct {
	VehicleID          string           `json:"vehicle_id"`
	CustomerID         string           `json:"customer_id"`
	AssignedTo         *string          `json:"assigned_to"`
	ProblemDescription string           `json:"problem_description"`
	EstimatedHours     *decimal.Decimal `json:"estimated_hours"`
	EstimatedCost      *decimal.Decimal `json:"estimated_cost"`
}

// UpdateJobCardInput carries only the fields being changed.
type UpdateJobCardInput struct {
	JobID       string           `json:"-"`
	Status      *model.JobStatus `json:"status"`
	Diagnosis   *string          `json:"diagnosis"`
	ActualHours *decimal.Decimal `json:"actual_hours"`
	AssignedTo  *string          `json:"assigned_to"`
}

type AddServiceInput struct {
	JobID     string  `json:"-"`
	ServiceID string  `json:"service_id"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes"`
}

type AddPartInput struct {
	JobID       string  `json:"-"`
	InventoryID string  `json:"inventory_id"`
	Quantity    int     `json:"quantity"`
	Notes       *string `json:"notes"`
}

// CompleteInput is forwarded to invoice generation.
type CompleteInput struct {
	JobID   string           `json:"-"`
	TaxRate *decimal.Decimal `json:"tax_rate"`
	DueDate *time.Time       `json:"due_date"`
	Notes   *string          `json:"notes"`
}
