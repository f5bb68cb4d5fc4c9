// Package quota meters the expensive menu extraction against a per-diner
// daily allowance held in an external ledger.
package quota

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrQuotaExceeded is returned when the diner has no extraction left today.
	ErrQuotaExceeded = errors.New("QUOTA_EXCEEDED")
	// ErrLedgerUnavailable wraps ledger failures during the debit.
	ErrLedgerUnavailable = errors.New("QUOTA_CHECK_FAILED")
)

// Charge identifies one granted debit: the diner and the day bucket it was
// taken from.
type Charge struct {
	DinerID string
	Day     string
}

// Ledger is a per-diner, per-day counter. Debit and Credit are atomic
// read-modify-write operations.
type Ledger interface {
	// Debit consumes one unit from today's bucket if any remain and reports
	// whether it did.
	Debit(ctx context.Context, dinerID string) (Charge, bool, error)
	// Credit returns one unit to the bucket the charge was taken from. It
	// never drives the counter below zero.
	Credit(ctx context.Context, charge Charge) error
	// Remaining reports how many units are left today.
	Remaining(ctx context.Context, dinerID string) (int, error)
}

// day is the ledger bucket for t. Days roll over at UTC midnight.
func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func remaining(limit, used int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}
