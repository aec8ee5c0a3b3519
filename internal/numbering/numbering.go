// Package numbering produces tenant-scoped document numbers of the form
// PREFIX-YYYYMMDD-NNNN from atomic per-day counters.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	KindJobCard = "job_card"
	KindInvoice = "invoice"
	KindPayment = "payment"
)

const (
	PrefixJobCard = "JOB"
	PrefixInvoice = "INV"
	PrefixPayment = "PAY"
)

// Allocator hands out the next value of a (tenant, kind, period) counter.
// Implementations must be atomic with respect to concurrent callers and
// take part in the caller's transaction.
type Allocator interface {
	Next(ctx context.Context, tenantID, kind, period string) (int64, error)
}

func Period(t time.Time) string {
	return t.UTC().Format("20060102")
}

func Format(prefix, period string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", strings.ToUpper(prefix), period, seq)
}

// Generate allocates and formats the next number for kind.
func Generate(ctx context.Context, alloc Allocator, tenantID, kind, prefix string, now time.Time) (string, error) {
	period := Period(now)
	seq, err := alloc.Next(ctx, tenantID, kind, period)
	if err != nil {
		return "", fmt.Errorf("allocate %s number: %w", kind, err)
	}
	return Format(prefix, period, seq), nil
}
