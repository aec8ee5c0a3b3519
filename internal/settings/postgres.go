package settings

import (
	"context"
	"database/sql"
	"errors"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGProvider struct {
	DB       *sqlx.DB
	defaults Defaults
}

func NewPGProvider(db *sqlx.DB, defaults Defaults) *PGProvider {
	return &PGProvider{DB: db, defaults: defaults}
}

func (p *PGProvider) Get(ctx context.Context, tenantID string) (*model.GarageSettings, error) {
	var gs model.GarageSettings
	query := `
        SELECT tenant_id, default_tax_rate, invoice_prefix, payment_terms_days
        FROM garage_settings WHERE tenant_id = $1
    `
	if err := p.DB.GetContext(ctx, &gs, query, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p.defaults.For(tenantID), nil
		}
		return nil, err
	}
	if gs.InvoicePrefix == "" {
		gs.InvoicePrefix = p.defaults.InvoicePrefix
	}
	if gs.PaymentTermsDays <= 0 {
		gs.PaymentTermsDays = p.defaults.PaymentTermsDays
	}
	return &gs, nil
}
