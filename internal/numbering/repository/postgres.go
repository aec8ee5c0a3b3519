package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB sqlx.ExtContext
}

func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

// Next bumps the counter in place. The row lock taken by the upsert
// serializes concurrent allocations until the surrounding transaction ends.
func (r *PGRepository) Next(ctx context.Context, tenantID, kind, period string) (int64, error) {
	query := `
        INSERT INTO number_sequences (tenant_id, kind, period, last_value)
        VALUES ($1, $2, $3, 1)
        ON CONFLICT (tenant_id, kind, period)
        DO UPDATE SET last_value = number_sequences.last_value + 1
        RETURNING last_value
    `
	var value int64
	if err := sqlx.GetContext(ctx, r.DB, &value, query, tenantID, kind, period); err != nil {
		return 0, err
	}
	return value, nil
}
