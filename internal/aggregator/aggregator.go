// Package aggregator collects heterogeneous source data for one token,
// normalizes it into per-category metrics, scores it and caches the result.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tokenhealth/internal/cache"
	"tokenhealth/internal/models"
	"tokenhealth/internal/resolver"
	"tokenhealth/internal/scoring"
	"tokenhealth/internal/sources"

	"github.com/sirupsen/logrus"
)

// Narrow views of the source clients, so tests can substitute fakes and a
// category only sees the sources it owns.
type (
	MarketSource interface {
		CoinByID(ctx context.Context, id string) (*sources.Coin, error)
	}
	PoolSource interface {
		TopPools(ctx context.Context, network, address string) (*sources.PoolStats, error)
	}
	SecuritySource interface {
		TokenSecurity(ctx context.Context, blockchain, address string) (*sources.SecurityReport, error)
	}
	HolderSource interface {
		TopHolders(ctx context.Context, address string) (*sources.HolderStats, error)
	}
	TVLSource interface {
		TVL(ctx context.Context, slug string) (float64, error)
	}
	SocialSource interface {
		TwitterProfile(ctx context.Context, handle string) (*sources.TwitterProfile, error)
	}
	TokenResolver interface {
		Resolve(ctx context.Context, raw string) (*models.ResolvedToken, error)
	}
)

// Request is one metrics computation. Context hints carry identity already
// resolved by the caller so the aggregator can skip redundant lookups.
type Request struct {
	Token        string
	Address      string
	Blockchain   string
	Twitter      string
	Github       string
	ForceRefresh bool
	Mode         string
}

// Aggregator wires the sources, cache and scoring policy together.
type Aggregator struct {
	resolver TokenResolver
	market   MarketSource
	pools    PoolSource
	security SecuritySource
	holders  HolderSource
	tvl      TVLSource
	social   SocialSource
	cache    cache.Store
	weights  scoring.Weights
	log      *logrus.Entry
	now      func() time.Time
}

// Config carries the aggregator's dependencies.
type Config struct {
	Resolver TokenResolver
	Market   MarketSource
	Pools    PoolSource
	Security SecuritySource
	Holders  HolderSource
	TVL      TVLSource
	Social   SocialSource
	Cache    cache.Store
	Weights  scoring.Weights
}

func New(cfg Config) *Aggregator {
	return &Aggregator{
		resolver: cfg.Resolver,
		market:   cfg.Market,
		pools:    cfg.Pools,
		security: cfg.Security,
		holders:  cfg.Holders,
		tvl:      cfg.TVL,
		social:   cfg.Social,
		cache:    cfg.Cache,
		weights:  cfg.Weights,
		log:      logrus.WithField("component", "aggregator"),
		now:      time.Now,
	}
}

// WithClock replaces the time source for deterministic tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// categoriesForMode expands the request mode into the category set to
// compute. Empty mode means all five.
func categoriesForMode(mode string) ([]models.Category, error) {
	if mode == "" {
		return models.MetricCategories, nil
	}
	name := strings.TrimSuffix(mode, "-only")
	for _, category := range models.MetricCategories {
		if string(category) == name {
			return []models.Category{category}, nil
		}
	}
	return nil, fmt.Errorf("unknown mode %q: %w", mode, models.ErrValidation)
}

// metricSet is the per-request working set the category fetchers fill in.
type metricSet struct {
	security    models.SecurityMetrics
	liquidity   models.LiquidityMetrics
	tokenomics  models.TokenomicsMetrics
	community   models.CommunityMetrics
	development models.DevelopmentMetrics
}

// GetMetrics resolves the token, satisfies categories from cache where
// fresh, fans out to the sources for the rest, scores, writes back and
// returns the merged record. Partial source failures degrade to nulls;
// only resolution failure aborts the call.
func (a *Aggregator) GetMetrics(ctx context.Context, req Request) (*models.MetricsRecord, error) {
	resolved, err := a.resolver.Resolve(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	applyHints(resolved, req)

	categories, err := categoriesForMode(req.Mode)
	if err != nil {
		return nil, err
	}

	key := resolver.NormalizeIdentifier(req.Token)
	now := a.now()
	log := a.log.WithField("token", key)

	set := &metricSet{}
	cached := make(map[models.Category]bool, len(categories))
	var missing []models.Category
	for _, category := range categories {
		if !req.ForceRefresh && a.readCached(ctx, key, category, now, set, log) {
			cached[category] = true
			continue
		}
		missing = append(missing, category)
	}

	if len(missing) > 0 {
		coin, err := a.fetchCoin(ctx, resolved, log)
		if err != nil {
			// Resolution said the token exists but the primary source now
			// disagrees: surface NotFound without touching the cache.
			return nil, err
		}

		var wg sync.WaitGroup
		for _, category := range missing {
			wg.Add(1)
			go func(category models.Category) {
				defer wg.Done()
				a.fill(ctx, category, coin, resolved, req, set, log)
			}(category)
		}
		wg.Wait()

		for _, category := range missing {
			a.writeBack(ctx, key, category, now, set, log)
		}
	}

	record := a.buildRecord(resolved, categories, set, now)
	record.FromCache = len(missing) == 0 && len(categories) > 0
	log.WithFields(logrus.Fields{
		"health":    record.HealthScore,
		"risk":      scoring.RiskLabel(record.HealthScore),
		"fromCache": record.FromCache,
	}).Info("metrics computed")
	return record, nil
}

// applyHints fills identity gaps from caller-supplied context.
func applyHints(resolved *models.ResolvedToken, req Request) {
	if resolved.ContractAddress == "" && resolver.IsContractAddress(strings.ToLower(req.Address)) {
		resolved.ContractAddress = strings.ToLower(req.Address)
	}
	if req.Blockchain != "" {
		resolved.Blockchain = strings.ToLower(req.Blockchain)
	}
	if req.Twitter != "" {
		resolved.TwitterHandle = strings.TrimPrefix(req.Twitter, "@")
	}
}

// readCached attempts one category's cache read. Read failures are treated
// as misses so the cache can never block serving data.
func (a *Aggregator) readCached(ctx context.Context, key string, category models.Category, now time.Time, set *metricSet, log *logrus.Entry) bool {
	entry, hit, err := a.cache.Get(ctx, key, category, now)
	if err != nil {
		log.WithError(err).WithField("category", category).Warn("cache read failed, treating as miss")
		return false
	}
	if !hit {
		return false
	}
	if err := unmarshalCategory(category, entry.Payload, set); err != nil {
		log.WithError(err).WithField("category", category).Warn("cache payload unusable, refetching")
		return false
	}
	return true
}

// fetchCoin pulls the primary market record once per request; every category
// except security derives fields from it. An upstream failure degrades all
// coin-derived fields rather than failing the call; a 404 is fatal.
func (a *Aggregator) fetchCoin(ctx context.Context, resolved *models.ResolvedToken, log *logrus.Entry) (*sources.Coin, error) {
	coin, err := a.market.CoinByID(ctx, resolved.ID)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			return nil, err
		}
		log.WithError(err).WithField("source", "coingecko").Warn("market data degraded")
		return nil, nil
	}
	if resolved.ContractAddress == "" {
		for platform, address := range coin.Platforms {
			if address != "" {
				resolved.ContractAddress = strings.ToLower(address)
				resolved.Blockchain = platform
				break
			}
		}
	}
	if resolved.TwitterHandle == "" {
		resolved.TwitterHandle = coin.Links.TwitterScreenName
	}
	return coin, nil
}

// fill computes one category's metrics. Each source failure inside a
// category is logged and leaves that source's fields null.
func (a *Aggregator) fill(ctx context.Context, category models.Category, coin *sources.Coin, resolved *models.ResolvedToken, req Request, set *metricSet, log *logrus.Entry) {
	switch category {
	case models.CategorySecurity:
		set.security = a.fillSecurity(ctx, resolved, log)
	case models.CategoryLiquidity:
		set.liquidity = a.fillLiquidity(ctx, coin, resolved, log)
	case models.CategoryTokenomics:
		set.tokenomics = tokenomicsFromCoin(coin)
	case models.CategoryCommunity:
		set.community = a.fillCommunity(ctx, coin, resolved, log)
	case models.CategoryDevelopment:
		set.development = developmentFromCoin(coin, a.now())
	}
}

func (a *Aggregator) fillSecurity(ctx context.Context, resolved *models.ResolvedToken, log *logrus.Entry) models.SecurityMetrics {
	if resolved.ContractAddress == "" {
		return models.SecurityMetrics{}
	}

	var metrics models.SecurityMetrics
	report, err := a.security.TokenSecurity(ctx, resolved.Blockchain, resolved.ContractAddress)
	if err != nil {
		log.WithError(err).WithField("source", "goplus").Warn("security flags degraded")
	} else {
		metrics = securityFromReport(report)
	}

	// Etherscan holder data backfills concentration when GoPlus has none.
	if !metrics.TopHolderPct.Valid {
		stats, err := a.holders.TopHolders(ctx, resolved.ContractAddress)
		if err != nil {
			log.WithError(err).WithField("source", "etherscan").Warn("holder concentration degraded")
		} else {
			mergeHolderStats(&metrics, stats)
		}
	}
	return metrics
}

// fillLiquidity needs both the market source and the on-chain pool source;
// the independent calls fan out concurrently and merge, each degrading
// alone on failure.
func (a *Aggregator) fillLiquidity(ctx context.Context, coin *sources.Coin, resolved *models.ResolvedToken, log *logrus.Entry) models.LiquidityMetrics {
	metrics := liquidityFromCoin(coin)

	var (
		wg     sync.WaitGroup
		stats  *sources.PoolStats
		report *sources.SecurityReport
		tvl    float64
		tvlOK  bool
	)
	if resolved.ContractAddress != "" {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s, err := a.pools.TopPools(ctx, resolved.Blockchain, resolved.ContractAddress)
			if err != nil {
				log.WithError(err).WithField("source", "geckoterminal").Warn("pool data degraded")
				return
			}
			stats = s
		}()
		go func() {
			defer wg.Done()
			r, err := a.security.TokenSecurity(ctx, resolved.Blockchain, resolved.ContractAddress)
			if err != nil {
				log.WithError(err).WithField("source", "goplus").Warn("lp lock data degraded")
				return
			}
			report = r
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := a.tvl.TVL(ctx, resolved.ID)
		if err != nil {
			// Most tokens are not DeFiLlama protocols; a miss here is routine.
			log.WithError(err).WithField("source", "defillama").Debug("no tvl data")
			return
		}
		tvl, tvlOK = v, true
	}()
	wg.Wait()

	if stats != nil {
		applyPoolStats(&metrics, stats)
	}
	if report != nil {
		applyLPLock(&metrics, report)
	}
	if tvlOK {
		metrics.TVLUSD = nullFloat(tvl)
	}
	return metrics
}

func (a *Aggregator) fillCommunity(ctx context.Context, coin *sources.Coin, resolved *models.ResolvedToken, log *logrus.Entry) models.CommunityMetrics {
	metrics := communityFromCoin(coin)
	if resolved.TwitterHandle == "" {
		return metrics
	}

	profile, err := a.social.TwitterProfile(ctx, resolved.TwitterHandle)
	if err != nil {
		log.WithError(err).WithField("source", "apify").Warn("twitter profile degraded")
		return metrics
	}
	applyTwitterProfile(&metrics, profile)
	return metrics
}

// writeBack persists one freshly computed category. Failures are logged and
// swallowed: the response to the caller still succeeds.
func (a *Aggregator) writeBack(ctx context.Context, key string, category models.Category, now time.Time, set *metricSet, log *logrus.Entry) {
	payload, err := marshalCategory(category, set)
	if err != nil {
		log.WithError(err).WithField("category", category).Warn("cache payload marshal failed")
		return
	}
	if err := a.cache.Put(ctx, key, category, payload, now, cache.ForCategory(category)); err != nil {
		log.WithError(err).WithField("category", category).Warn("cache write failed")
	}
}

func marshalCategory(category models.Category, set *metricSet) ([]byte, error) {
	switch category {
	case models.CategorySecurity:
		return json.Marshal(set.security)
	case models.CategoryLiquidity:
		return json.Marshal(set.liquidity)
	case models.CategoryTokenomics:
		return json.Marshal(set.tokenomics)
	case models.CategoryCommunity:
		return json.Marshal(set.community)
	case models.CategoryDevelopment:
		return json.Marshal(set.development)
	}
	return nil, fmt.Errorf("unknown category %q", category)
}

func unmarshalCategory(category models.Category, payload []byte, set *metricSet) error {
	switch category {
	case models.CategorySecurity:
		return json.Unmarshal(payload, &set.security)
	case models.CategoryLiquidity:
		return json.Unmarshal(payload, &set.liquidity)
	case models.CategoryTokenomics:
		return json.Unmarshal(payload, &set.tokenomics)
	case models.CategoryCommunity:
		return json.Unmarshal(payload, &set.community)
	case models.CategoryDevelopment:
		return json.Unmarshal(payload, &set.development)
	}
	return fmt.Errorf("unknown category %q", category)
}

// buildRecord scores the working set and formats the presentation record.
// Scoring is deterministic over the metrics, so cached and fresh categories
// merge into identical output.
func (a *Aggregator) buildRecord(resolved *models.ResolvedToken, categories []models.Category, set *metricSet, now time.Time) *models.MetricsRecord {
	scores := models.CategoryScores{}
	requested := make(map[models.Category]bool, len(categories))
	for _, category := range categories {
		requested[category] = true
		switch category {
		case models.CategorySecurity:
			scores.Security = scoring.Security(set.security)
		case models.CategoryLiquidity:
			scores.Liquidity = scoring.Liquidity(set.liquidity)
		case models.CategoryTokenomics:
			scores.Tokenomics = scoring.Tokenomics(set.tokenomics)
		case models.CategoryCommunity:
			scores.Community = scoring.Community(set.community)
		case models.CategoryDevelopment:
			scores.Development = scoring.Development(set.development)
		}
	}

	record := formatRecord(resolved, set, scores)
	record.HealthScore = a.overall(scores, requested)
	record.UpdatedAt = now
	return record
}

// overall applies the configured weighted blend across the full category
// set; a mode-restricted request averages only what it computed.
func (a *Aggregator) overall(scores models.CategoryScores, requested map[models.Category]bool) int {
	if len(requested) == len(models.MetricCategories) {
		return scoring.Overall(scores, a.weights)
	}

	total, n := 0, 0
	for category := range requested {
		switch category {
		case models.CategorySecurity:
			total += scores.Security
		case models.CategoryLiquidity:
			total += scores.Liquidity
		case models.CategoryTokenomics:
			total += scores.Tokenomics
		case models.CategoryCommunity:
			total += scores.Community
		case models.CategoryDevelopment:
			total += scores.Development
		}
		n++
	}
	if n == 0 {
		return 0
	}
	return total / n
}
