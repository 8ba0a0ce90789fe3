// Package scoring turns raw category metrics into 0-100 scores. All policy
// lives in this file as data: ordered threshold bands, baselines and weights,
// so recalibration never touches the scoring code.
package scoring

// Band pairs a lower bound with the score delta applied when a value reaches
// it. Ladders are ordered by Min descending; the first band the value reaches
// wins.
type Band struct {
	Min   float64
	Delta int
}

// Ladder is an ordered set of bands for one metric.
type Ladder []Band

// Delta returns the score contribution for a value.
func (l Ladder) Delta(v float64) int {
	for _, band := range l {
		if v >= band.Min {
			return band.Delta
		}
	}
	return 0
}

// Category baselines. Rules add to or subtract from these before clamping.
const (
	BaselineSecurity    = 50
	BaselineLiquidity   = 65
	BaselineTokenomics  = 65
	BaselineCommunity   = 70
	BaselineDevelopment = 60
)

// Holder concentration: <15% low risk, 15-30% medium, >=30% high.
var TopHolderLadder = Ladder{
	{Min: 30, Delta: -20},
	{Min: 15, Delta: -10},
	{Min: 0, Delta: 10},
}

// Looser bands for the combined top-5 share.
var TopFiveHoldersLadder = Ladder{
	{Min: 60, Delta: -15},
	{Min: 40, Delta: -8},
	{Min: 0, Delta: 5},
}

// Buy/sell tax: >10% excessive, >5% high, else normal.
var TaxLadder = Ladder{
	{Min: 10, Delta: -20},
	{Min: 5, Delta: -10},
	{Min: 0, Delta: 0},
}

// Log-scale magnitude bands for dollar figures.
var MarketCapLadder = Ladder{
	{Min: 1e9, Delta: 15},
	{Min: 1e8, Delta: 10},
	{Min: 1e7, Delta: 5},
	{Min: 0, Delta: -5},
}

var TVLLadder = Ladder{
	{Min: 1e9, Delta: 10},
	{Min: 1e8, Delta: 7},
	{Min: 1e7, Delta: 4},
	{Min: 0, Delta: 0},
}

var LiquidityLadder = Ladder{
	{Min: 1e7, Delta: 15},
	{Min: 1e6, Delta: 10},
	{Min: 1e5, Delta: 5},
	{Min: 0, Delta: -10},
}

var VolumeLadder = Ladder{
	{Min: 1e8, Delta: 10},
	{Min: 1e6, Delta: 5},
	{Min: 1e4, Delta: 0},
	{Min: 0, Delta: -5},
}

// Liquidity lock duration in days.
var LockDaysLadder = Ladder{
	{Min: 365, Delta: 15},
	{Min: 180, Delta: 10},
	{Min: 30, Delta: 5},
	{Min: 0, Delta: -5},
}

// Circulating share of total supply, percent.
var CirculatingPctLadder = Ladder{
	{Min: 75, Delta: 10},
	{Min: 50, Delta: 5},
	{Min: 25, Delta: 0},
	{Min: 0, Delta: -10},
}

// FDV-to-market-cap ratio: large overhangs of unvested supply score down.
var FDVRatioLadder = Ladder{
	{Min: 5, Delta: -10},
	{Min: 2, Delta: -5},
	{Min: 0, Delta: 0},
}

var FollowersLadder = Ladder{
	{Min: 1e6, Delta: 15},
	{Min: 1e5, Delta: 10},
	{Min: 1e4, Delta: 5},
	{Min: 0, Delta: -5},
}

var TelegramLadder = Ladder{
	{Min: 1e5, Delta: 8},
	{Min: 1e4, Delta: 4},
	{Min: 0, Delta: 0},
}

var RedditLadder = Ladder{
	{Min: 1e5, Delta: 6},
	{Min: 1e4, Delta: 3},
	{Min: 0, Delta: 0},
}

var SentimentLadder = Ladder{
	{Min: 70, Delta: 10},
	{Min: 50, Delta: 5},
	{Min: 40, Delta: 0},
	{Min: 0, Delta: -10},
}

var TweetCadenceLadder = Ladder{
	{Min: 7, Delta: 5},
	{Min: 1, Delta: 0},
	{Min: 0, Delta: -5},
}

var StarsLadder = Ladder{
	{Min: 1e4, Delta: 15},
	{Min: 1e3, Delta: 10},
	{Min: 100, Delta: 5},
	{Min: 0, Delta: 0},
}

var CommitsLadder = Ladder{
	{Min: 100, Delta: 15},
	{Min: 20, Delta: 10},
	{Min: 1, Delta: 5},
	{Min: 0, Delta: -10},
}

var ContributorsLadder = Ladder{
	{Min: 50, Delta: 10},
	{Min: 10, Delta: 5},
	{Min: 1, Delta: 0},
	{Min: 0, Delta: -5},
}

// Open issues per day since repo genesis.
var IssueDensityLadder = Ladder{
	{Min: 5, Delta: -25},
	{Min: 1, Delta: -15},
	{Min: 0.2, Delta: -5},
	{Min: 0, Delta: 10},
}

// Fixed bonuses and penalties for boolean risk flags.
const (
	HoneypotPenalty      = -40
	NotHoneypotBonus     = 5
	RenouncedBonus       = 10
	NotRenouncedPenalty  = -5
	FreezePenalty        = -10
	NoFreezeBonus        = 5
	MintablePenalty      = -8
	NotMintableBonus     = 4
	OpenSourceBonus      = 5
	ClosedSourcePenalty  = -10
	VerifiedTwitterBonus = 5
	CappedSupplyBonus    = 5
	UncappedSupplyMalus  = -3
)

// Weights blends the five category scores into the overall health score.
type Weights struct {
	Security    float64
	Liquidity   float64
	Tokenomics  float64
	Community   float64
	Development float64
}

// DefaultWeights favors security: it carries the only instant-fail style
// signals (honeypot, tax traps).
func DefaultWeights() Weights {
	return Weights{
		Security:    0.30,
		Liquidity:   0.175,
		Tokenomics:  0.175,
		Community:   0.175,
		Development: 0.175,
	}
}
