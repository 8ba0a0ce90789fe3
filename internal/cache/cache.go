// Package cache stores per-(token, category) metric payloads with time-based
// expiry. Writes are idempotent upserts derived from upstream state, so
// concurrent writers for the same pair are safe: last writer wins.
package cache

import (
	"context"
	"time"

	"tokenhealth/internal/models"
)

// Entry is one cached payload for a (token, category) pair.
type Entry struct {
	Key         string          `json:"key"`
	Category    models.Category `json:"category"`
	Payload     []byte          `json:"payload"`
	LastUpdated time.Time       `json:"last_updated"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// Store is the cache contract. Get returns (entry, true) only while
// now <= expires_at; a stale or missing row is reported as a miss and left in
// place. Put fully replaces any prior entry for the pair.
type Store interface {
	Get(ctx context.Context, key string, category models.Category, now time.Time) (*Entry, bool, error)
	Put(ctx context.Context, key string, category models.Category, payload []byte, now time.Time, ttl time.Duration) error
}
