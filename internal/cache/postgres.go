package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tokenhealth/internal/models"

	_ "github.com/lib/pq"
)

// categoryTables whitelists the table behind each category. Table names are
// never built from caller input.
var categoryTables = map[models.Category]string{
	models.CategorySecurity:    "token_security_cache",
	models.CategoryLiquidity:   "token_liquidity_cache",
	models.CategoryTokenomics:  "token_tokenomics_cache",
	models.CategoryCommunity:   "token_community_cache",
	models.CategoryDevelopment: "token_development_cache",
	models.CategoryGeneric:     "token_data_cache",
}

// PostgresStore persists cache entries in one table per category.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the live entry for (key, category), or a miss if the row is
// absent or past expires_at. Expired rows are left in place; they are simply
// ineligible to satisfy a read.
func (s *PostgresStore) Get(ctx context.Context, key string, category models.Category, now time.Time) (*Entry, bool, error) {
	table, ok := categoryTables[category]
	if !ok {
		return nil, false, fmt.Errorf("unknown cache category %q", category)
	}

	query := fmt.Sprintf(`
		SELECT payload, last_updated, expires_at
		FROM %s
		WHERE token_key = $1
	`, table)

	entry := Entry{Key: key, Category: category}
	err := s.db.QueryRowContext(ctx, query, key).Scan(&entry.Payload, &entry.LastUpdated, &entry.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache %s: %w", table, err)
	}

	if now.After(entry.ExpiresAt) {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put upserts the payload for (key, category), fully replacing any prior
// entry and its timestamps.
func (s *PostgresStore) Put(ctx context.Context, key string, category models.Category, payload []byte, now time.Time, ttl time.Duration) error {
	table, ok := categoryTables[category]
	if !ok {
		return fmt.Errorf("unknown cache category %q", category)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (token_key, payload, last_updated, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_key)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			last_updated = EXCLUDED.last_updated,
			expires_at = EXCLUDED.expires_at
	`, table)

	_, err := s.db.ExecContext(ctx, query, key, payload, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to upsert cache %s: %w", table, err)
	}
	return nil
}
