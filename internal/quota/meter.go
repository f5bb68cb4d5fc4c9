package quota

import (
	"context"
	"fmt"
	"time"

	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/common/metrics"
)

const defaultCreditTimeout = 5 * time.Second

// Meter wraps attempts in a debit and, when they do not pay off, a credit.
type Meter struct {
	ledger        Ledger
	creditTimeout time.Duration
	logger        logger.Logger
}

func NewMeter(ledger Ledger, creditTimeout time.Duration, log logger.Logger) *Meter {
	if creditTimeout <= 0 {
		creditTimeout = defaultCreditTimeout
	}
	return &Meter{
		ledger:        ledger,
		creditTimeout: creditTimeout,
		logger:        logger.ForComponent(log, "quota"),
	}
}

// Remaining reports the diner's allowance left today.
func (m *Meter) Remaining(ctx context.Context, dinerID string) (int, error) {
	return m.ledger.Remaining(ctx, dinerID)
}

// WithMeteredAttempt debits one unit for dinerID and runs attempt. When the
// attempt fails or its result is not usable the unit is credited back exactly
// once, to the day it was charged to, even if ctx was cancelled meanwhile.
// The attempt's own result and error are always returned as they were.
//
// A refused debit returns ErrQuotaExceeded without running attempt. A nil
// usable treats every error-free result as usable.
func WithMeteredAttempt[T any](
	ctx context.Context,
	m *Meter,
	dinerID string,
	attempt func(context.Context) (T, error),
	usable func(T) bool,
) (result T, err error) {
	charge, ok, err := m.ledger.Debit(ctx, dinerID)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	if !ok {
		metrics.QuotaOutcomes.WithLabelValues(metrics.QuotaExhausted).Inc()
		m.logger.Info("scrape quota exhausted", map[string]interface{}{"dinerId": dinerID})
		return result, ErrQuotaExceeded
	}
	metrics.QuotaOutcomes.WithLabelValues(metrics.QuotaDebited).Inc()

	kept := false
	defer func() {
		if !kept {
			m.credit(ctx, charge)
		}
	}()

	result, err = attempt(ctx)
	kept = err == nil && (usable == nil || usable(result))
	return result, err
}

func (m *Meter) credit(ctx context.Context, charge Charge) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.creditTimeout)
	defer cancel()

	if err := m.ledger.Credit(ctx, charge); err != nil {
		metrics.QuotaOutcomes.WithLabelValues(metrics.QuotaCreditFailed).Inc()
		m.logger.Error("failed to credit scrape quota", map[string]interface{}{
			"dinerId": charge.DinerID,
			"day":     charge.Day,
			"error":   err,
		})
		return
	}
	metrics.QuotaOutcomes.WithLabelValues(metrics.QuotaCredited).Inc()
	m.logger.Debug("scrape quota credited", map[string]interface{}{
		"dinerId": charge.DinerID,
		"day":     charge.Day,
	})
}
