package scoring

import (
	"database/sql"
	"testing"

	"tokenhealth/internal/models"

	"github.com/stretchr/testify/assert"
)

func validFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func validInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func validBool(v bool) sql.NullBool {
	return sql.NullBool{Bool: v, Valid: true}
}

func TestLadderDelta(t *testing.T) {
	assert.Equal(t, -20, TopHolderLadder.Delta(30))
	assert.Equal(t, -20, TopHolderLadder.Delta(55.5))
	assert.Equal(t, -10, TopHolderLadder.Delta(15))
	assert.Equal(t, 10, TopHolderLadder.Delta(14.9))
	assert.Equal(t, 10, TopHolderLadder.Delta(0))
	// Below every band there is no contribution.
	assert.Equal(t, 0, TopHolderLadder.Delta(-1))
}

func TestSecurityBaselineOnMissingData(t *testing.T) {
	assert.Equal(t, BaselineSecurity, Security(models.SecurityMetrics{}))
}

func TestSecurityHoneypotDominates(t *testing.T) {
	score := Security(models.SecurityMetrics{Honeypot: validBool(true)})
	assert.Equal(t, BaselineSecurity+HoneypotPenalty, score)
}

func TestSecurityHealthyToken(t *testing.T) {
	m := models.SecurityMetrics{
		TopHolderPct:       validFloat(5),
		TopFiveHoldersPct:  validFloat(20),
		Honeypot:           validBool(false),
		OwnershipRenounced: validBool(true),
		FreezeAuthority:    validBool(false),
		Mintable:           validBool(false),
		OpenSource:         validBool(true),
		BuyTaxPct:          validFloat(1),
		SellTaxPct:         validFloat(1),
	}
	// 50 +10 +5 +5 +10 +5 +4 +5 +0 +0
	assert.Equal(t, 94, Security(m))
}

func TestSecurityClampsAtZero(t *testing.T) {
	m := models.SecurityMetrics{
		TopHolderPct:       validFloat(60),
		TopFiveHoldersPct:  validFloat(90),
		Honeypot:           validBool(true),
		OwnershipRenounced: validBool(false),
		FreezeAuthority:    validBool(true),
		Mintable:           validBool(true),
		OpenSource:         validBool(false),
		BuyTaxPct:          validFloat(25),
		SellTaxPct:         validFloat(25),
	}
	assert.Equal(t, 0, Security(m))
}

func TestLiquidityPartialData(t *testing.T) {
	m := models.LiquidityMetrics{LiquidityUSD: validFloat(2e6)}
	assert.Equal(t, BaselineLiquidity+10, Liquidity(m))
}

func TestTokenomics(t *testing.T) {
	m := models.TokenomicsMetrics{
		CirculatingPct:  validFloat(80),
		MaxSupply:       validFloat(1e9),
		MarketCapUSD:    validFloat(1e9),
		FullyDilutedUSD: validFloat(2e9),
	}
	// 65 +10 +5 -5
	assert.Equal(t, 75, Tokenomics(m))
}

func TestCommunityClampsAtHundred(t *testing.T) {
	m := models.CommunityMetrics{
		TwitterFollowers:  validInt(2e5),
		TwitterVerified:   validBool(true),
		TweetsPerWeek:     validFloat(10),
		TelegramMembers:   validInt(5e4),
		RedditSubscribers: validInt(2e5),
		SentimentUpPct:    validFloat(80),
	}
	assert.Equal(t, 100, Community(m))
}

func TestDevelopment(t *testing.T) {
	m := models.DevelopmentMetrics{
		Stars:         validInt(5000),
		Commits4Weeks: validInt(50),
		Contributors:  validInt(20),
		OpenIssues:    validInt(5),
		RepoAgeDays:   validFloat(100),
	}
	// 60 +10 +10 +5 +10 (density 0.05)
	assert.Equal(t, 95, Development(m))
}

func TestIssueDensity(t *testing.T) {
	density, ok := IssueDensity(models.DevelopmentMetrics{
		OpenIssues:  validInt(10),
		RepoAgeDays: validFloat(100),
	})
	assert.True(t, ok)
	assert.InDelta(t, 0.1, density, 1e-9)

	_, ok = IssueDensity(models.DevelopmentMetrics{OpenIssues: validInt(10)})
	assert.False(t, ok)

	// A brand-new repo has no meaningful density.
	_, ok = IssueDensity(models.DevelopmentMetrics{
		OpenIssues:  validInt(10),
		RepoAgeDays: validFloat(0.5),
	})
	assert.False(t, ok)
}

func TestRoadmapProgress(t *testing.T) {
	age := validFloat(100)

	assert.Equal(t, models.NA, RoadmapProgress(models.DevelopmentMetrics{}))
	assert.Equal(t, "100%", RoadmapProgress(models.DevelopmentMetrics{OpenIssues: validInt(0)}))
	assert.Equal(t, models.NA, RoadmapProgress(models.DevelopmentMetrics{OpenIssues: validInt(10)}))
	assert.Equal(t, "75%", RoadmapProgress(models.DevelopmentMetrics{OpenIssues: validInt(10), RepoAgeDays: age}))
	assert.Equal(t, "50%", RoadmapProgress(models.DevelopmentMetrics{OpenIssues: validInt(50), RepoAgeDays: age}))
	assert.Equal(t, "25%", RoadmapProgress(models.DevelopmentMetrics{OpenIssues: validInt(200), RepoAgeDays: age}))
	assert.Equal(t, "10%", RoadmapProgress(models.DevelopmentMetrics{OpenIssues: validInt(1000), RepoAgeDays: age}))
}

func TestOverall(t *testing.T) {
	w := DefaultWeights()

	perfect := models.CategoryScores{Security: 100, Liquidity: 100, Tokenomics: 100, Community: 100, Development: 100}
	assert.Equal(t, 100, Overall(perfect, w))

	mixed := models.CategoryScores{Security: 80, Liquidity: 60, Tokenomics: 60, Community: 60, Development: 60}
	// 0.30*80 + 0.175*240 = 24 + 42
	assert.Equal(t, 66, Overall(mixed, w))

	assert.Equal(t, 0, Overall(models.CategoryScores{}, w))
}

func TestRiskLabel(t *testing.T) {
	assert.Equal(t, "low", RiskLabel(85))
	assert.Equal(t, "low", RiskLabel(80))
	assert.Equal(t, "medium", RiskLabel(79))
	assert.Equal(t, "medium", RiskLabel(50))
	assert.Equal(t, "high", RiskLabel(49))
	assert.Equal(t, "high", RiskLabel(0))
	assert.Equal(t, "invalid(-1)", RiskLabel(-1))
}
