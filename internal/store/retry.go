package store

import (
	"context"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
)

type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 50 * time.Millisecond}

// WithRetry re-runs fn while it fails with a retryable error (lock contention
// or a duplicate document number), waiting attempt*Backoff between tries.
// The last error is returned once attempts run out.
func WithRetry(ctx context.Context, p RetryPolicy, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !apperror.IsRetryable(err) || attempt == attempts || ctx.Err() != nil {
			return err
		}

		timer := time.NewTimer(time.Duration(attempt) * p.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

// Transact runs fn in a transaction, retrying the whole transaction under p.
func Transact(ctx context.Context, tm TxManager, p RetryPolicy, fn TxFunc) error {
	return WithRetry(ctx, p, func() error {
		return tm.WithinTx(ctx, fn)
	})
}
