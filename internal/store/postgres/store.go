// Package postgres implements store.TxManager over sqlx. Each transaction
// runs at read committed with a lock timeout, and lock contention errors are
// reported as apperror.ErrConflict so the use cases can retry.
package postgres

import (
	"context"
	"fmt"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory"
	invrepo "github.com/GideonMwiti/garagemaster-sub000/internal/inventory/repository"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice"
	billrepo "github.com/GideonMwiti/garagemaster-sub000/internal/invoice/repository"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard"
	jobrepo "github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/repository"
	"github.com/GideonMwiti/garagemaster-sub000/internal/numbering"
	seqrepo "github.com/GideonMwiti/garagemaster-sub000/internal/numbering/repository"
	"github.com/GideonMwiti/garagemaster-sub000/internal/payment"
	payrepo "github.com/GideonMwiti/garagemaster-sub000/internal/payment/repository"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/database/postgres"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Store struct {
	db            *sqlx.DB
	lockTimeoutMS int
	logger        logger.ZapLogger
}

func NewStore(db *sqlx.DB, lockTimeoutMS int, log logger.ZapLogger) *Store {
	return &Store{db: db, lockTimeoutMS: lockTimeoutMS, logger: log}
}

func (s *Store) Repositories() store.Repositories {
	return &repositories{db: s.db}
}

func (s *Store) WithinTx(ctx context.Context, fn store.TxFunc) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if s.lockTimeoutMS > 0 {
		// SET LOCAL does not accept bind parameters.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeoutMS)); err != nil {
			return classify(err)
		}
	}

	if err = fn(ctx, &repositories{db: tx}); err != nil {
		return classify(err)
	}

	if err = tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func classify(err error) error {
	if postgres.IsLockContention(err) {
		return apperror.New(apperror.ErrConflict, "the record is being modified by another request, please retry")
	}
	return err
}

type repositories struct {
	db sqlx.ExtContext
}

func (r *repositories) Inventory() inventory.Repository { return invrepo.NewPGRepository(r.db) }
func (r *repositories) JobCards() jobcard.Repository    { return jobrepo.NewPGRepository(r.db) }
func (r *repositories) Invoices() invoice.Repository    { return billrepo.NewPGRepository(r.db) }
func (r *repositories) Payments() payment.Repository    { return payrepo.NewPGRepository(r.db) }
func (r *repositories) Sequences() numbering.Allocator  { return seqrepo.NewPGRepository(r.db) }
