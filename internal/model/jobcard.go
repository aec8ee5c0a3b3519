package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	JobPending      JobStatus = "pending"
	JobInProgress   JobStatus = "in_progress"
	JobWaitingParts JobStatus = "waiting_parts"
	JobCompleted    JobStatus = "completed"
	JobCancelled    JobStatus = "cancelled"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobInProgress, JobWaitingParts, JobCompleted, JobCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further edits or transitions are allowed.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobCancelled
}

type JobCard struct {
	ID                 string              `db:"id" json:"id"`
	TenantID           string              `db:"tenant_id" json:"tenant_id"`
	Number             string              `db:"number" json:"number"`
	VehicleID          string              `db:"vehicle_id" json:"vehicle_id"`
	CustomerID         string              `db:"customer_id" json:"customer_id"`
	AssignedTo         *string             `db:"assigned_to" json:"assigned_to,omitempty"`
	ProblemDescription string              `db:"problem_description" json:"problem_description"`
	Diagnosis          *string             `db:"diagnosis" json:"diagnosis,omitempty"`
	Status             JobStatus           `db:"status" json:"status"`
	EstimatedHours     decimal.NullDecimal `db:"estimated_hours" json:"estimated_hours"`
	ActualHours        decimal.NullDecimal `db:"actual_hours" json:"actual_hours"`
	EstimatedCost      decimal.NullDecimal `db:"estimated_cost" json:"estimated_cost"`
	CreatedBy          *string             `db:"created_by" json:"created_by,omitempty"`
	CreatedAt          time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at" json:"updated_at"`

	Services []JobServiceLine `db:"-" json:"services,omitempty"`
	Parts    []JobPartLine    `db:"-" json:"parts,omitempty"`
}

// ServicesTotal, PartsTotal and Total sum the price snapshots taken when
// lines were added.
func (j *JobCard) ServicesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range j.Services {
		total = total.Add(l.Price)
	}
	return total
}

func (j *JobCard) PartsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range j.Parts {
		total = total.Add(l.Price)
	}
	return total
}

func (j *JobCard) Total() decimal.Decimal {
	return j.ServicesTotal().Add(j.PartsTotal())
}

type JobServiceLine struct {
	ID          string          `db:"id" json:"id"`
	TenantID    string          `db:"tenant_id" json:"tenant_id"`
	JobCardID   string          `db:"job_card_id" json:"job_card_id"`
	ServiceID   string          `db:"service_id" json:"service_id"`
	Description string          `db:"description" json:"description"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type JobPartLine struct {
	ID          string          `db:"id" json:"id"`
	TenantID    string          `db:"tenant_id" json:"tenant_id"`
	JobCardID   string          `db:"job_card_id" json:"job_card_id"`
	InventoryID string          `db:"inventory_id" json:"inventory_id"`
	Description string          `db:"description" json:"description"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
