package aggregator

import (
	"database/sql"
	"time"

	"tokenhealth/internal/models"
	"tokenhealth/internal/sources"
)

// Null-type constructors. A field is only Valid when the source actually
// supplied it; everything else stays null and formats to the sentinel.

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func nullBool(v bool) sql.NullBool {
	return sql.NullBool{Bool: v, Valid: true}
}

func nullFloatPtr(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return nullFloat(*v)
}

func nullIntPtr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return nullInt(*v)
}

func securityFromReport(report *sources.SecurityReport) models.SecurityMetrics {
	metrics := models.SecurityMetrics{
		OwnershipRenounced: nullBool(report.OwnershipRenounced),
		Honeypot:           nullBool(report.Honeypot),
		FreezeAuthority:    nullBool(report.TransferPausable),
		Mintable:           nullBool(report.Mintable),
		OpenSource:         nullBool(report.OpenSource),
		BuyTaxPct:          nullFloat(report.BuyTaxPct),
		SellTaxPct:         nullFloat(report.SellTaxPct),
	}
	if report.HolderCount > 0 {
		metrics.HolderCount = nullInt(report.HolderCount)
	}
	if report.TopHolderPct > 0 {
		metrics.TopHolderPct = nullFloat(report.TopHolderPct)
	}
	if report.TopFiveHoldersPct > 0 {
		metrics.TopFiveHoldersPct = nullFloat(report.TopFiveHoldersPct)
	}
	return metrics
}

func mergeHolderStats(metrics *models.SecurityMetrics, stats *sources.HolderStats) {
	metrics.TopHolderPct = nullFloat(stats.TopHolderPct)
	metrics.TopFiveHoldersPct = nullFloat(stats.TopFiveHoldersPct)
	if !metrics.HolderCount.Valid && stats.HolderCount > 0 {
		metrics.HolderCount = nullInt(int64(stats.HolderCount))
	}
}

func liquidityFromCoin(coin *sources.Coin) models.LiquidityMetrics {
	if coin == nil {
		return models.LiquidityMetrics{}
	}
	metrics := models.LiquidityMetrics{}
	if v, ok := coin.MarketData.MarketCap["usd"]; ok {
		metrics.MarketCapUSD = nullFloat(v)
	}
	if v, ok := coin.MarketData.TotalVolume["usd"]; ok {
		metrics.Volume24hUSD = nullFloat(v)
	}
	return metrics
}

func applyPoolStats(metrics *models.LiquidityMetrics, stats *sources.PoolStats) {
	metrics.LiquidityUSD = nullFloat(stats.ReserveUSD)
	metrics.PoolCount = nullInt(int64(stats.PoolCount))
	// Pool-level volume is the better 24h figure when present.
	if stats.Volume24hUSD > 0 {
		metrics.Volume24hUSD = nullFloat(stats.Volume24hUSD)
	}
}

// applyLPLock carries the GoPlus LP lock duration into the liquidity view.
func applyLPLock(metrics *models.LiquidityMetrics, report *sources.SecurityReport) {
	if report.HasLPData {
		metrics.LiquidityLockDays = nullFloat(report.LPLockDays)
	}
}

func tokenomicsFromCoin(coin *sources.Coin) models.TokenomicsMetrics {
	if coin == nil {
		return models.TokenomicsMetrics{}
	}
	metrics := models.TokenomicsMetrics{
		TotalSupply:       nullFloatPtr(coin.MarketData.TotalSupply),
		CirculatingSupply: nullFloatPtr(coin.MarketData.CirculatingSupply),
		MaxSupply:         nullFloatPtr(coin.MarketData.MaxSupply),
	}
	if v, ok := coin.MarketData.MarketCap["usd"]; ok {
		metrics.MarketCapUSD = nullFloat(v)
	}
	if v, ok := coin.MarketData.FullyDilutedValuation["usd"]; ok {
		metrics.FullyDilutedUSD = nullFloat(v)
	}
	if metrics.TotalSupply.Valid && metrics.TotalSupply.Float64 > 0 && metrics.CirculatingSupply.Valid {
		metrics.CirculatingPct = nullFloat(metrics.CirculatingSupply.Float64 / metrics.TotalSupply.Float64 * 100)
	}
	return metrics
}

func communityFromCoin(coin *sources.Coin) models.CommunityMetrics {
	if coin == nil {
		return models.CommunityMetrics{}
	}
	return models.CommunityMetrics{
		TwitterFollowers:  nullIntPtr(coin.CommunityData.TwitterFollowers),
		TelegramMembers:   nullIntPtr(coin.CommunityData.TelegramChannelUserCount),
		RedditSubscribers: nullIntPtr(coin.CommunityData.RedditSubscribers),
		SentimentUpPct:    nullFloatPtr(coin.SentimentUp),
	}
}

func applyTwitterProfile(metrics *models.CommunityMetrics, profile *sources.TwitterProfile) {
	metrics.TwitterFollowers = nullInt(profile.Followers)
	metrics.TwitterVerified = nullBool(profile.Verified)
	if profile.TweetsPerWeek > 0 {
		metrics.TweetsPerWeek = nullFloat(profile.TweetsPerWeek)
	}
}

func developmentFromCoin(coin *sources.Coin, now time.Time) models.DevelopmentMetrics {
	if coin == nil {
		return models.DevelopmentMetrics{}
	}
	metrics := models.DevelopmentMetrics{
		Stars:         nullIntPtr(coin.DeveloperData.Stars),
		Forks:         nullIntPtr(coin.DeveloperData.Forks),
		Commits4Weeks: nullIntPtr(coin.DeveloperData.CommitCount4Weeks),
		Contributors:  nullIntPtr(coin.DeveloperData.PullRequestContributors),
	}
	if coin.DeveloperData.TotalIssues != nil && coin.DeveloperData.ClosedIssues != nil {
		open := *coin.DeveloperData.TotalIssues - *coin.DeveloperData.ClosedIssues
		if open < 0 {
			open = 0
		}
		metrics.OpenIssues = nullInt(open)
	}
	if coin.GenesisDate != nil {
		if genesis, err := time.Parse("2006-01-02", *coin.GenesisDate); err == nil {
			metrics.RepoAgeDays = nullFloat(now.Sub(genesis).Hours() / 24)
		}
	}
	return metrics
}
