package scoring

import (
	"fmt"
	"math"

	"tokenhealth/internal/models"
)

// clamp bounds a working score to [0,100].
func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Security scores contract risk. Unknown values contribute nothing: a token
// with no on-chain data sits at the baseline rather than being punished for
// missing sources.
func Security(m models.SecurityMetrics) int {
	score := BaselineSecurity

	if m.TopHolderPct.Valid {
		score += TopHolderLadder.Delta(m.TopHolderPct.Float64)
	}
	if m.TopFiveHoldersPct.Valid {
		score += TopFiveHoldersLadder.Delta(m.TopFiveHoldersPct.Float64)
	}
	if m.Honeypot.Valid {
		if m.Honeypot.Bool {
			score += HoneypotPenalty
		} else {
			score += NotHoneypotBonus
		}
	}
	if m.OwnershipRenounced.Valid {
		if m.OwnershipRenounced.Bool {
			score += RenouncedBonus
		} else {
			score += NotRenouncedPenalty
		}
	}
	if m.FreezeAuthority.Valid {
		if m.FreezeAuthority.Bool {
			score += FreezePenalty
		} else {
			score += NoFreezeBonus
		}
	}
	if m.Mintable.Valid {
		if m.Mintable.Bool {
			score += MintablePenalty
		} else {
			score += NotMintableBonus
		}
	}
	if m.OpenSource.Valid {
		if m.OpenSource.Bool {
			score += OpenSourceBonus
		} else {
			score += ClosedSourcePenalty
		}
	}
	if m.BuyTaxPct.Valid {
		score += TaxLadder.Delta(m.BuyTaxPct.Float64)
	}
	if m.SellTaxPct.Valid {
		score += TaxLadder.Delta(m.SellTaxPct.Float64)
	}

	return clamp(score)
}

// Liquidity scores market depth.
func Liquidity(m models.LiquidityMetrics) int {
	score := BaselineLiquidity

	if m.LiquidityUSD.Valid {
		score += LiquidityLadder.Delta(m.LiquidityUSD.Float64)
	}
	if m.Volume24hUSD.Valid {
		score += VolumeLadder.Delta(m.Volume24hUSD.Float64)
	}
	if m.MarketCapUSD.Valid {
		score += MarketCapLadder.Delta(m.MarketCapUSD.Float64)
	}
	if m.TVLUSD.Valid {
		score += TVLLadder.Delta(m.TVLUSD.Float64)
	}
	if m.LiquidityLockDays.Valid {
		score += LockDaysLadder.Delta(m.LiquidityLockDays.Float64)
	}

	return clamp(score)
}

// Tokenomics scores supply distribution.
func Tokenomics(m models.TokenomicsMetrics) int {
	score := BaselineTokenomics

	if m.CirculatingPct.Valid {
		score += CirculatingPctLadder.Delta(m.CirculatingPct.Float64)
	}
	if m.MaxSupply.Valid {
		if m.MaxSupply.Float64 > 0 {
			score += CappedSupplyBonus
		} else {
			score += UncappedSupplyMalus
		}
	}
	if m.FullyDilutedUSD.Valid && m.MarketCapUSD.Valid && m.MarketCapUSD.Float64 > 0 {
		ratio := m.FullyDilutedUSD.Float64 / m.MarketCapUSD.Float64
		score += FDVRatioLadder.Delta(ratio)
	}

	return clamp(score)
}

// Community scores social presence.
func Community(m models.CommunityMetrics) int {
	score := BaselineCommunity

	if m.TwitterFollowers.Valid {
		score += FollowersLadder.Delta(float64(m.TwitterFollowers.Int64))
	}
	if m.TwitterVerified.Valid && m.TwitterVerified.Bool {
		score += VerifiedTwitterBonus
	}
	if m.TweetsPerWeek.Valid {
		score += TweetCadenceLadder.Delta(m.TweetsPerWeek.Float64)
	}
	if m.TelegramMembers.Valid {
		score += TelegramLadder.Delta(float64(m.TelegramMembers.Int64))
	}
	if m.RedditSubscribers.Valid {
		score += RedditLadder.Delta(float64(m.RedditSubscribers.Int64))
	}
	if m.SentimentUpPct.Valid {
		score += SentimentLadder.Delta(m.SentimentUpPct.Float64)
	}

	return clamp(score)
}

// Development scores repository activity.
func Development(m models.DevelopmentMetrics) int {
	score := BaselineDevelopment

	if m.Stars.Valid {
		score += StarsLadder.Delta(float64(m.Stars.Int64))
	}
	if m.Commits4Weeks.Valid {
		score += CommitsLadder.Delta(float64(m.Commits4Weeks.Int64))
	}
	if m.Contributors.Valid {
		score += ContributorsLadder.Delta(float64(m.Contributors.Int64))
	}
	if density, ok := IssueDensity(m); ok {
		score += IssueDensityLadder.Delta(density)
	}

	return clamp(score)
}

// IssueDensity is open issues per day since the repo's genesis.
func IssueDensity(m models.DevelopmentMetrics) (float64, bool) {
	if !m.OpenIssues.Valid || !m.RepoAgeDays.Valid || m.RepoAgeDays.Float64 < 1 {
		return 0, false
	}
	return float64(m.OpenIssues.Int64) / m.RepoAgeDays.Float64, true
}

// RoadmapProgress maps issue pressure onto a rough completion percentage.
// Zero open issues reads as a fully delivered roadmap; density tiers walk the
// estimate down monotonically.
func RoadmapProgress(m models.DevelopmentMetrics) string {
	if !m.OpenIssues.Valid {
		return models.NA
	}
	if m.OpenIssues.Int64 == 0 {
		return "100%"
	}
	density, ok := IssueDensity(m)
	if !ok {
		return models.NA
	}
	switch {
	case density < 0.2:
		return "75%"
	case density < 1:
		return "50%"
	case density < 5:
		return "25%"
	default:
		return "10%"
	}
}

// Overall blends the category scores with the configured weights.
func Overall(s models.CategoryScores, w Weights) int {
	total := w.Security*float64(s.Security) +
		w.Liquidity*float64(s.Liquidity) +
		w.Tokenomics*float64(s.Tokenomics) +
		w.Community*float64(s.Community) +
		w.Development*float64(s.Development)
	return clamp(int(math.Round(total)))
}

// RiskLabel names the band a score falls into, for display and logging.
func RiskLabel(score int) string {
	switch {
	case score >= 80:
		return "low"
	case score >= 50:
		return "medium"
	case score >= 0:
		return "high"
	default:
		return fmt.Sprintf("invalid(%d)", score)
	}
}
