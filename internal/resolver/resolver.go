// Package resolver turns a raw user string (symbol, name fragment or contract
// address) into a catalog identity.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"tokenhealth/internal/cache"
	"tokenhealth/internal/models"
	"tokenhealth/internal/sources"

	"github.com/sirupsen/logrus"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeIdentifier strips a leading $, lowercases and trims. The result is
// the cache identity: distinct raw forms may collide on the same key.
func NormalizeIdentifier(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	return strings.ToLower(strings.TrimSpace(s))
}

// IsContractAddress reports whether a normalized identifier has the
// 0x-prefixed 40-hex-character shape.
func IsContractAddress(id string) bool {
	return addressPattern.MatchString(id)
}

// wellKnown short-circuits catalog downloads for top-tier assets.
var wellKnown = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"usdt":  "tether",
	"usdc":  "usd-coin",
	"bnb":   "binancecoin",
	"sol":   "solana",
	"xrp":   "ripple",
	"ada":   "cardano",
	"doge":  "dogecoin",
	"shib":  "shiba-inu",
	"pepe":  "pepe",
	"link":  "chainlink",
	"matic": "matic-network",
	"dot":   "polkadot",
	"ltc":   "litecoin",
	"avax":  "avalanche-2",
	"uni":   "uniswap",
	"trx":   "tron",
	"ton":   "the-open-network",
	"near":  "near",
}

// CatalogSource is the slice of the market-data client the resolver needs.
type CatalogSource interface {
	CoinByID(ctx context.Context, id string) (*sources.Coin, error)
	CoinByContract(ctx context.Context, platform, address string) (*sources.Coin, error)
	List(ctx context.Context) ([]sources.CatalogEntry, error)
	Search(ctx context.Context, query string) ([]sources.SearchCoin, error)
	Markets(ctx context.Context, ids []string) ([]sources.MarketRow, error)
}

// Resolver resolves identifiers against the primary market-data source,
// caching the full catalog and search results in the generic cache.
type Resolver struct {
	source     CatalogSource
	cache      cache.Store
	blockchain string
	log        *logrus.Entry
	now        func() time.Time
}

func New(source CatalogSource, store cache.Store, defaultBlockchain string) *Resolver {
	return &Resolver{
		source:     source,
		cache:      store,
		blockchain: defaultBlockchain,
		log:        logrus.WithField("component", "resolver"),
		now:        time.Now,
	}
}

// WithClock replaces the time source for deterministic tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve maps a raw input to a catalog identity, in order: contract lookup,
// well-known symbol table, catalog exact-symbol match, free-text search.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*models.ResolvedToken, error) {
	key := NormalizeIdentifier(raw)
	if key == "" {
		return nil, fmt.Errorf("empty token identifier: %w", models.ErrValidation)
	}

	if IsContractAddress(key) {
		coin, err := r.source.CoinByContract(ctx, r.blockchain, key)
		if err != nil {
			return nil, err
		}
		return r.fromCoin(coin), nil
	}

	if id, ok := wellKnown[key]; ok {
		coin, err := r.source.CoinByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return r.fromCoin(coin), nil
	}

	if resolved, ok := r.resolveFromCatalog(ctx, key); ok {
		return resolved, nil
	}

	return r.resolveFromSearch(ctx, key)
}

func (r *Resolver) fromCoin(coin *sources.Coin) *models.ResolvedToken {
	resolved := &models.ResolvedToken{
		ID:            coin.ID,
		Symbol:        strings.ToLower(coin.Symbol),
		Name:          coin.Name,
		Image:         coin.Image.Small,
		TwitterHandle: coin.Links.TwitterScreenName,
	}
	for platform, address := range coin.Platforms {
		if address == "" {
			continue
		}
		resolved.ContractAddress = strings.ToLower(address)
		resolved.Blockchain = platform
		if platform == r.blockchain {
			break
		}
	}
	return resolved
}

// resolveFromCatalog matches the normalized key against the cached full
// catalog by exact symbol, preferring entries whose id or name also matches.
func (r *Resolver) resolveFromCatalog(ctx context.Context, key string) (*models.ResolvedToken, bool) {
	catalog, err := r.catalog(ctx)
	if err != nil {
		r.log.WithError(err).Warn("catalog unavailable, falling through to search")
		return nil, false
	}

	var matches []sources.CatalogEntry
	for _, entry := range catalog {
		if strings.ToLower(entry.Symbol) == key {
			matches = append(matches, entry)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}

	best := matches[0]
	for _, entry := range matches {
		if entry.ID == key || strings.ToLower(entry.Name) == key {
			best = entry
			break
		}
	}
	return &models.ResolvedToken{
		ID:     best.ID,
		Symbol: strings.ToLower(best.Symbol),
		Name:   best.Name,
	}, true
}

// catalog returns the id/symbol/name catalog, reusing the cached copy while
// fresh. Cache failures degrade to a live fetch.
func (r *Resolver) catalog(ctx context.Context) ([]sources.CatalogEntry, error) {
	const catalogKey = "catalog:coingecko"
	now := r.now()

	entry, hit, err := r.cache.Get(ctx, catalogKey, models.CategoryGeneric, now)
	if err != nil {
		r.log.WithError(err).Warn("catalog cache read failed")
	}
	if hit {
		var catalog []sources.CatalogEntry
		if err := json.Unmarshal(entry.Payload, &catalog); err == nil {
			return catalog, nil
		}
	}

	catalog, err := r.source.List(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(catalog); err == nil {
		if err := r.cache.Put(ctx, catalogKey, models.CategoryGeneric, payload, now, cache.TTLCatalog); err != nil {
			r.log.WithError(err).Warn("catalog cache write failed")
		}
	}
	return catalog, nil
}

// resolveFromSearch takes the top free-text hit ordered by market-cap rank
// ascending, missing rank last.
func (r *Resolver) resolveFromSearch(ctx context.Context, key string) (*models.ResolvedToken, error) {
	coins, err := r.source.Search(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(coins) == 0 {
		return nil, fmt.Errorf("no source entity for %q: %w", key, models.ErrTokenNotFound)
	}

	sort.SliceStable(coins, func(i, j int) bool {
		ri, rj := coins[i].MarketCapRank, coins[j].MarketCapRank
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return *ri < *rj
	})

	top := coins[0]
	return &models.ResolvedToken{
		ID:     top.ID,
		Symbol: strings.ToLower(top.Symbol),
		Name:   top.Name,
		Image:  top.Large,
	}, nil
}

// Search runs the token search endpoint flow: free-text search enriched with
// market rows, sorted by market cap descending with missing caps last.
// Results for one query are cached for an hour.
func (r *Resolver) Search(ctx context.Context, query string) ([]models.TokenSearchResult, error) {
	normalized := NormalizeIdentifier(query)
	if normalized == "" {
		return nil, fmt.Errorf("empty search query: %w", models.ErrValidation)
	}

	cacheKey := "search:" + normalized
	now := r.now()
	if entry, hit, err := r.cache.Get(ctx, cacheKey, models.CategoryGeneric, now); err != nil {
		r.log.WithError(err).Warn("search cache read failed")
	} else if hit {
		var results []models.TokenSearchResult
		if err := json.Unmarshal(entry.Payload, &results); err == nil {
			return results, nil
		}
	}

	coins, err := r.source.Search(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(coins) == 0 {
		return []models.TokenSearchResult{}, nil
	}
	if len(coins) > 25 {
		coins = coins[:25]
	}

	results := make([]models.TokenSearchResult, 0, len(coins))
	byID := make(map[string]*models.TokenSearchResult, len(coins))
	ids := make([]string, 0, len(coins))
	for _, coin := range coins {
		results = append(results, models.TokenSearchResult{
			ID:            coin.ID,
			Symbol:        strings.ToLower(coin.Symbol),
			Name:          coin.Name,
			Image:         coin.Large,
			MarketCapRank: coin.MarketCapRank,
		})
		byID[coin.ID] = &results[len(results)-1]
		ids = append(ids, coin.ID)
	}

	// Market enrichment is best-effort: a failure leaves rank-only results.
	if rows, err := r.source.Markets(ctx, ids); err != nil {
		r.log.WithError(err).WithField("query", normalized).Warn("market enrichment failed")
	} else {
		for _, row := range rows {
			if result, ok := byID[row.ID]; ok {
				result.MarketCap = row.MarketCap
				result.CurrentPrice = row.CurrentPrice
				result.TotalVolume = row.TotalVolume
				if result.Image == "" {
					result.Image = row.Image
				}
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		mi, mj := results[i].MarketCap, results[j].MarketCap
		if mi == nil {
			return false
		}
		if mj == nil {
			return true
		}
		return *mi > *mj
	})

	if payload, err := json.Marshal(results); err == nil {
		if err := r.cache.Put(ctx, cacheKey, models.CategoryGeneric, payload, now, cache.TTLSearch); err != nil {
			r.log.WithError(err).Warn("search cache write failed")
		}
	}
	return results, nil
}
