// Package migrations creates the Postgres schema used by the repositories.
package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS garage_settings (
            tenant_id TEXT PRIMARY KEY,
            default_tax_rate NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (default_tax_rate >= 0 AND default_tax_rate <= 100),
            invoice_prefix TEXT NOT NULL DEFAULT 'INV',
            payment_terms_days INTEGER NOT NULL DEFAULT 7
        );`,
	`CREATE TABLE IF NOT EXISTS number_sequences (
            tenant_id TEXT NOT NULL,
            kind TEXT NOT NULL,
            period TEXT NOT NULL,
            last_value BIGINT NOT NULL,
            PRIMARY KEY (tenant_id, kind, period)
        );`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            part_code TEXT NOT NULL,
            name TEXT NOT NULL,
            quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
            reorder_level INTEGER NOT NULL DEFAULT 0,
            unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
            selling_price NUMERIC(12,2) NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (tenant_id, part_code)
        );`,
	`CREATE TABLE IF NOT EXISTS inventory_adjustments (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            item_id TEXT NOT NULL,
            delta INTEGER NOT NULL,
            quantity_before INTEGER NOT NULL,
            quantity_after INTEGER NOT NULL CHECK (quantity_after >= 0),
            reason TEXT NOT NULL,
            reference_type TEXT,
            reference_id TEXT,
            actor_id TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
	// The adjustment log outlives deleted items.
	`ALTER TABLE inventory_adjustments DROP CONSTRAINT IF EXISTS inventory_adjustments_item_id_fkey;`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_adjustments_item ON inventory_adjustments (tenant_id, item_id, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS services (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            name TEXT NOT NULL,
            price NUMERIC(12,2) NOT NULL CHECK (price >= 0)
        );`,
	`CREATE TABLE IF NOT EXISTS job_cards (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            number TEXT NOT NULL,
            vehicle_id TEXT NOT NULL,
            customer_id TEXT NOT NULL,
            assigned_to TEXT,
            problem_description TEXT NOT NULL,
            diagnosis TEXT,
            status TEXT NOT NULL CHECK (status IN ('pending', 'in_progress', 'waiting_parts', 'completed', 'cancelled')),
            estimated_hours NUMERIC(8,2),
            actual_hours NUMERIC(8,2),
            estimated_cost NUMERIC(12,2),
            created_by TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (tenant_id, number)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_job_cards_status ON job_cards (tenant_id, status, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS job_service_lines (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            job_card_id TEXT NOT NULL REFERENCES job_cards(id) ON DELETE CASCADE,
            service_id TEXT NOT NULL REFERENCES services(id),
            description TEXT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_price NUMERIC(12,2) NOT NULL,
            price NUMERIC(12,2) NOT NULL,
            notes TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
	`CREATE TABLE IF NOT EXISTS job_part_lines (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            job_card_id TEXT NOT NULL REFERENCES job_cards(id) ON DELETE CASCADE,
            inventory_id TEXT NOT NULL REFERENCES inventory_items(id),
            description TEXT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_price NUMERIC(12,2) NOT NULL,
            price NUMERIC(12,2) NOT NULL,
            notes TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
	`CREATE TABLE IF NOT EXISTS invoices (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            number TEXT NOT NULL,
            job_card_id TEXT REFERENCES job_cards(id) ON DELETE SET NULL,
            customer_id TEXT NOT NULL,
            vehicle_id TEXT,
            subtotal NUMERIC(12,2) NOT NULL CHECK (subtotal >= 0),
            discount NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (discount >= 0 AND discount <= subtotal),
            tax_rate NUMERIC(5,2) NOT NULL CHECK (tax_rate >= 0 AND tax_rate <= 100),
            tax_amount NUMERIC(12,2) NOT NULL,
            total_amount NUMERIC(12,2) NOT NULL,
            status TEXT NOT NULL CHECK (status IN ('draft', 'sent', 'paid', 'cancelled')),
            due_date TIMESTAMPTZ NOT NULL,
            notes TEXT,
            created_by TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (tenant_id, number)
        );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_job_card ON invoices (tenant_id, job_card_id) WHERE job_card_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
            description TEXT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_price NUMERIC(12,2) NOT NULL,
            total_price NUMERIC(12,2) NOT NULL,
            inventory_id TEXT REFERENCES inventory_items(id)
        );`,
	`CREATE TABLE IF NOT EXISTS payments (
            id TEXT PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            invoice_id TEXT NOT NULL REFERENCES invoices(id),
            number TEXT NOT NULL,
            amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
            method TEXT NOT NULL,
            reference TEXT,
            received_by TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (tenant_id, number)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_payments_invoice ON payments (tenant_id, invoice_id);`,
}

// Run applies the schema in one transaction. Every statement is idempotent.
func Run(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}
