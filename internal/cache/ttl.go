package cache

import (
	"time"

	"tokenhealth/internal/models"
)

// TTLs per data class. These are added to now when storing to compute
// expires_at.
const (
	// Live market metrics move constantly.
	TTLLiveMetrics = 5 * time.Minute

	// Contract risk flags and supply schedules change rarely.
	TTLSlowMetrics = 24 * time.Hour

	// Search results for one query string.
	TTLSearch = time.Hour

	// Social profiles (follower counts etc).
	TTLSocialProfile = 24 * time.Hour

	// Generic token payloads (resolver catalog, misc lookups).
	TTLGeneric = 15 * time.Minute

	// Full source catalog of id/symbol/name triples.
	TTLCatalog = 24 * time.Hour
)

// ForCategory returns the write TTL for a metric category.
func ForCategory(c models.Category) time.Duration {
	switch c {
	case models.CategorySecurity, models.CategoryTokenomics, models.CategoryDevelopment:
		return TTLSlowMetrics
	case models.CategoryLiquidity:
		return TTLLiveMetrics
	case models.CategoryCommunity:
		return TTLSocialProfile
	default:
		return TTLGeneric
	}
}
