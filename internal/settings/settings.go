// Package settings resolves per-garage billing settings (default tax rate,
// invoice prefix, payment terms). The settings table is owned elsewhere; this
// package only reads it and falls back to configured defaults.
package settings

import (
	"context"
	"sync"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/shopspring/decimal"
)

type Provider interface {
	Get(ctx context.Context, tenantID string) (*model.GarageSettings, error)
}

type Defaults struct {
	TaxRate          decimal.Decimal
	InvoicePrefix    string
	PaymentTermsDays int
}

func (d Defaults) For(tenantID string) *model.GarageSettings {
	return &model.GarageSettings{
		TenantID:         tenantID,
		DefaultTaxRate:   d.TaxRate,
		InvoicePrefix:    d.InvoicePrefix,
		PaymentTermsDays: d.PaymentTermsDays,
	}
}

// Static serves defaults, with optional per-tenant overrides.
type Static struct {
	defaults Defaults
	mu       sync.RWMutex
	tenants  map[string]model.GarageSettings
}

func NewStatic(defaults Defaults) *Static {
	return &Static{defaults: defaults, tenants: make(map[string]model.GarageSettings)}
}

func (s *Static) Set(gs model.GarageSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[gs.TenantID] = gs
}

func (s *Static) Get(_ context.Context, tenantID string) (*model.GarageSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if gs, ok := s.tenants[tenantID]; ok {
		return &gs, nil
	}
	return s.defaults.For(tenantID), nil
}
