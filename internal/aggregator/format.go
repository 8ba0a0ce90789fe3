package aggregator

import (
	"database/sql"

	"tokenhealth/internal/models"
	"tokenhealth/internal/scoring"
)

// formatRecord is the presentation boundary: every declared display field is
// populated with either a formatted value or the "N/A" sentinel, raw fields
// default to zero values. The core stays typed and null-safe; sentinels
// exist only here.
func formatRecord(resolved *models.ResolvedToken, set *metricSet, scores models.CategoryScores) *models.MetricsRecord {
	record := &models.MetricsRecord{
		TokenID:         resolved.ID,
		Symbol:          resolved.Symbol,
		Name:            resolved.Name,
		ContractAddress: resolved.ContractAddress,
		Blockchain:      resolved.Blockchain,
		Scores:          scores,
	}

	// Security
	record.TopHoldersPercentage, record.TopHoldersPercentageRaw = pctField(set.security.TopHolderPct)
	record.Top5HoldersPercentage, record.Top5HoldersPercentageRaw = pctField(set.security.TopFiveHoldersPct)
	record.HolderCount, record.HolderCountRaw = countField(set.security.HolderCount)
	record.OwnershipRenounced, record.OwnershipRenouncedRaw = boolField(set.security.OwnershipRenounced)
	record.Honeypot, record.HoneypotRaw = boolField(set.security.Honeypot)
	record.FreezeAuthority, record.FreezeAuthorityRaw = boolField(set.security.FreezeAuthority)
	record.Mintable, record.MintableRaw = boolField(set.security.Mintable)
	record.OpenSource, record.OpenSourceRaw = boolField(set.security.OpenSource)
	record.BuyTax, record.BuyTaxRaw = pctField(set.security.BuyTaxPct)
	record.SellTax, record.SellTaxRaw = pctField(set.security.SellTaxPct)

	// Liquidity
	record.Liquidity, record.LiquidityRaw = usdField(set.liquidity.LiquidityUSD)
	record.Volume24h, record.Volume24hRaw = usdField(set.liquidity.Volume24hUSD)
	record.MarketCap, record.MarketCapRaw = usdField(set.liquidity.MarketCapUSD)
	record.TVL, record.TVLRaw = usdField(set.liquidity.TVLUSD)
	record.PoolCount, record.PoolCountRaw = countField(set.liquidity.PoolCount)
	record.LiquidityLock, record.LiquidityLockDays = daysField(set.liquidity.LiquidityLockDays)

	// Tokenomics
	record.TotalSupply, record.TotalSupplyRaw = amountField(set.tokenomics.TotalSupply)
	record.CirculatingSupply, record.CirculatingSupplyRaw = amountField(set.tokenomics.CirculatingSupply)
	record.MaxSupply, record.MaxSupplyRaw = amountField(set.tokenomics.MaxSupply)
	record.CirculatingPercent, record.CirculatingPercentRaw = pctField(set.tokenomics.CirculatingPct)
	record.FullyDilutedValuation, record.FullyDilutedRaw = usdField(set.tokenomics.FullyDilutedUSD)
	if record.MarketCap == models.NA {
		record.MarketCap, record.MarketCapRaw = usdField(set.tokenomics.MarketCapUSD)
	}

	// Community
	record.TwitterFollowers, record.TwitterFollowersRaw = countField(set.community.TwitterFollowers)
	record.TwitterVerified, record.TwitterVerifiedRaw = boolField(set.community.TwitterVerified)
	record.TweetsPerWeek, record.TweetsPerWeekRaw = amountField(set.community.TweetsPerWeek)
	record.TelegramMembers, record.TelegramMembersRaw = countField(set.community.TelegramMembers)
	record.RedditSubscribers, record.RedditSubscribersRaw = countField(set.community.RedditSubscribers)
	record.Sentiment, record.SentimentRaw = pctField(set.community.SentimentUpPct)

	// Development
	record.GithubStars, record.GithubStarsRaw = countField(set.development.Stars)
	record.GithubForks, record.GithubForksRaw = countField(set.development.Forks)
	record.RecentCommits, record.RecentCommitsRaw = countField(set.development.Commits4Weeks)
	record.Contributors, record.ContributorsRaw = countField(set.development.Contributors)
	record.OpenIssues, record.OpenIssuesRaw = countField(set.development.OpenIssues)
	record.RoadmapProgress = scoring.RoadmapProgress(set.development)

	return record
}

func pctField(v sql.NullFloat64) (string, float64) {
	if !v.Valid {
		return models.NA, 0
	}
	return models.FormatPercent(v.Float64), v.Float64
}

func usdField(v sql.NullFloat64) (string, float64) {
	if !v.Valid {
		return models.NA, 0
	}
	return models.FormatUSD(v.Float64), v.Float64
}

func amountField(v sql.NullFloat64) (string, float64) {
	if !v.Valid {
		return models.NA, 0
	}
	return models.FormatCount(v.Float64), v.Float64
}

func daysField(v sql.NullFloat64) (string, float64) {
	if !v.Valid {
		return models.NA, 0
	}
	return models.FormatDays(v.Float64), v.Float64
}

func countField(v sql.NullInt64) (string, int64) {
	if !v.Valid {
		return models.NA, 0
	}
	return models.FormatCount(float64(v.Int64)), v.Int64
}

func boolField(v sql.NullBool) (string, bool) {
	if !v.Valid {
		return models.NA, false
	}
	return models.FormatBool(v.Bool), v.Bool
}
