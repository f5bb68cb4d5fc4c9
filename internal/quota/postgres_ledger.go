package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresLedger keeps counters in the scrape_quota table. The conditional
// upsert makes the limit check and the increment one statement.
type PostgresLedger struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

func NewPostgresLedger(db *sql.DB, dailyLimit int) *PostgresLedger {
	return &PostgresLedger{db: db, limit: dailyLimit, now: time.Now}
}

func (l *PostgresLedger) Debit(ctx context.Context, dinerID string) (Charge, bool, error) {
	charge := Charge{DinerID: dinerID, Day: day(l.now())}
	if l.limit <= 0 {
		return charge, false, nil
	}

	var used int
	err := l.db.QueryRowContext(ctx, `
		INSERT INTO scrape_quota (diner_id, day, used)
		VALUES ($1, $2, 1)
		ON CONFLICT (diner_id, day) DO UPDATE
		SET used = scrape_quota.used + 1
		WHERE scrape_quota.used < $3
		RETURNING used`,
		charge.DinerID, charge.Day, l.limit).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return charge, false, nil
	}
	if err != nil {
		return charge, false, fmt.Errorf("debit scrape quota: %w", err)
	}
	return charge, true, nil
}

func (l *PostgresLedger) Credit(ctx context.Context, charge Charge) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE scrape_quota SET used = used - 1
		WHERE diner_id = $1 AND day = $2 AND used > 0`,
		charge.DinerID, charge.Day)
	if err != nil {
		return fmt.Errorf("credit scrape quota: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Remaining(ctx context.Context, dinerID string) (int, error) {
	var used int
	err := l.db.QueryRowContext(ctx,
		`SELECT used FROM scrape_quota WHERE diner_id = $1 AND day = $2`,
		dinerID, day(l.now())).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return remaining(l.limit, 0), nil
	}
	if err != nil {
		return 0, fmt.Errorf("read scrape quota: %w", err)
	}
	return remaining(l.limit, used), nil
}
