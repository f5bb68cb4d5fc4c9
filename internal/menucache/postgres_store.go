package menucache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dinefine-workers/internal/models"
)

// PostgresStore keeps extractions in the menu_extractions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, sourceKey string) (*models.CachedExtraction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT items, updated_at FROM menu_extractions WHERE source_key = $1`, sourceKey)

	var (
		raw       []byte
		updatedAt time.Time
	)
	if err := row.Scan(&raw, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select menu extraction: %w", err)
	}

	entry := &models.CachedExtraction{SourceKey: sourceKey, UpdatedAt: updatedAt}
	if err := json.Unmarshal(raw, &entry.Items); err != nil {
		return nil, fmt.Errorf("decode menu items: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Put(ctx context.Context, entry models.CachedExtraction) error {
	items, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("encode menu items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO menu_extractions (source_key, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (source_key) DO UPDATE
		SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at`,
		entry.SourceKey, items, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert menu extraction: %w", err)
	}
	return nil
}
