package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dinefine-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fakeLedger struct {
	mu        sync.Mutex
	limit     int
	used      int
	debits    int
	credits   int
	debitErr  error
	creditErr error
	creditCtx error
	credited  []Charge
}

func (f *fakeLedger) Debit(_ context.Context, dinerID string) (Charge, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debits++
	charge := Charge{DinerID: dinerID, Day: "2024-05-10"}
	if f.debitErr != nil {
		return charge, false, f.debitErr
	}
	if f.used >= f.limit {
		return charge, false, nil
	}
	f.used++
	return charge, true, nil
}

func (f *fakeLedger) Credit(ctx context.Context, charge Charge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credits++
	f.credited = append(f.credited, charge)
	f.creditCtx = ctx.Err()
	if f.creditErr != nil {
		return f.creditErr
	}
	if f.used > 0 {
		f.used--
	}
	return nil
}

func (f *fakeLedger) Remaining(context.Context, string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return remaining(f.limit, f.used), nil
}

func nonEmpty(items []string) bool { return len(items) > 0 }

func TestWithMeteredAttempt_UsableResultKeepsDebit(t *testing.T) {
	ledger := &fakeLedger{limit: 5}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))

	got, err := WithMeteredAttempt(context.Background(), m, "diner-1",
		func(context.Context) ([]string, error) { return []string{"pad thai"}, nil }, nonEmpty)

	require.NoError(t, err)
	assert.Equal(t, []string{"pad thai"}, got)
	assert.Equal(t, 1, ledger.used)
	assert.Equal(t, 0, ledger.credits)
}

func TestWithMeteredAttempt_ExhaustedSkipsAttempt(t *testing.T) {
	ledger := &fakeLedger{limit: 1, used: 1}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))

	called := false
	_, err := WithMeteredAttempt(context.Background(), m, "diner-1",
		func(context.Context) ([]string, error) { called = true; return nil, nil }, nonEmpty)

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.False(t, called)
	assert.Equal(t, 0, ledger.credits)
}

func TestWithMeteredAttempt_FailureCreditsOnce(t *testing.T) {
	ledger := &fakeLedger{limit: 5}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))
	upstream := errors.New("extraction timed out")

	_, err := WithMeteredAttempt(context.Background(), m, "diner-1",
		func(context.Context) ([]string, error) { return nil, upstream }, nonEmpty)

	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 1, ledger.credits)
	assert.Equal(t, []Charge{{DinerID: "diner-1", Day: "2024-05-10"}}, ledger.credited)
	assert.Equal(t, 0, ledger.used)
}

func TestWithMeteredAttempt_UnusableResultCredits(t *testing.T) {
	ledger := &fakeLedger{limit: 5}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))

	got, err := WithMeteredAttempt(context.Background(), m, "diner-1",
		func(context.Context) ([]string, error) { return []string{}, nil }, nonEmpty)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, ledger.credits)
	assert.Equal(t, 0, ledger.used)
}

func TestWithMeteredAttempt_NilUsableAcceptsAnyResult(t *testing.T) {
	ledger := &fakeLedger{limit: 5}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))

	_, err := WithMeteredAttempt(context.Background(), m, "diner-1",
		func(context.Context) (int, error) { return 0, nil }, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, ledger.used)
	assert.Equal(t, 0, ledger.credits)
}

func TestWithMeteredAttempt_CreditSurvivesCancellation(t *testing.T) {
	ledger := &fakeLedger{limit: 5}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())

	_, err := WithMeteredAttempt(ctx, m, "diner-1",
		func(ctx context.Context) ([]string, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		}, nonEmpty)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, ledger.credits)
	assert.NoError(t, ledger.creditCtx)
	assert.Equal(t, 0, ledger.used)
}

func TestWithMeteredAttempt_CreditFailureDoesNotMaskError(t *testing.T) {
	ledger := &fakeLedger{limit: 5, creditErr: errors.New("ledger down")}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))
	upstream := errors.New("upstream 502")

	_, err := WithMeteredAttempt(context.Background(), m, "diner-1",
		func(context.Context) ([]string, error) { return nil, upstream }, nonEmpty)

	assert.ErrorIs(t, err, upstream)
	assert.NotContains(t, err.Error(), "ledger down")
	assert.Equal(t, 1, ledger.credits)
}

func TestWithMeteredAttempt_DebitError(t *testing.T) {
	ledger := &fakeLedger{limit: 5, debitErr: errors.New("connection refused")}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))

	called := false
	_, err := WithMeteredAttempt(context.Background(), m, "diner-1",
		func(context.Context) ([]string, error) { called = true; return nil, nil }, nonEmpty)

	assert.ErrorIs(t, err, ErrLedgerUnavailable)
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
	assert.False(t, called)
}

func TestWithMeteredAttempt_CompensationNetsZero(t *testing.T) {
	ledger := &fakeLedger{limit: 3}
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))
	fail := errors.New("boom")

	for i := 0; i < 10; i++ {
		_, _ = WithMeteredAttempt(context.Background(), m, "diner-1",
			func(context.Context) ([]string, error) { return nil, fail }, nonEmpty)
	}

	rem, err := m.Remaining(context.Background(), "diner-1")
	require.NoError(t, err)
	assert.Equal(t, 3, rem)
	assert.Equal(t, 10, ledger.debits)
	assert.Equal(t, 10, ledger.credits)
}

func TestWithMeteredAttempt_CreditLandsOnChargedDay(t *testing.T) {
	ledger, mr := newTestRedisLedger(t, 1)
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))

	_, err := WithMeteredAttempt(context.Background(), m, "diner-1",
		func(context.Context) ([]string, error) {
			ledger.now = func() time.Time { return time.Date(2024, 5, 11, 0, 0, 30, 0, time.UTC) }
			return nil, errors.New("extraction timed out")
		}, nonEmpty)
	require.Error(t, err)

	val, err := mr.Get("quota:scrape:diner-1:2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "0", val)
	assert.False(t, mr.Exists("quota:scrape:diner-1:2024-05-11"))
}

func TestWithMeteredAttempt_ConcurrentFailuresNetZero(t *testing.T) {
	ledger, _ := newTestRedisLedger(t, 3)
	m := NewMeter(ledger, time.Second, logger.NewTestLogger(t))
	fail := errors.New("upstream 502")

	var g errgroup.Group
	for i := 0; i < 12; i++ {
		g.Go(func() error {
			_, err := WithMeteredAttempt(context.Background(), m, "diner-1",
				func(context.Context) ([]string, error) { return nil, fail }, nonEmpty)
			if err != nil && !errors.Is(err, fail) && !errors.Is(err, ErrQuotaExceeded) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	rem, err := m.Remaining(context.Background(), "diner-1")
	require.NoError(t, err)
	assert.Equal(t, 3, rem)
}
