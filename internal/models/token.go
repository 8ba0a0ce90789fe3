package models

import (
	"database/sql"
	"time"
)

// Category is one independent axis of the health score. Each category has its
// own cache table and TTL.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryLiquidity   Category = "liquidity"
	CategoryTokenomics  Category = "tokenomics"
	CategoryCommunity   Category = "community"
	CategoryDevelopment Category = "development"
	CategoryGeneric     Category = "generic"
)

// MetricCategories lists the five scored categories in display order.
var MetricCategories = []Category{
	CategorySecurity,
	CategoryLiquidity,
	CategoryTokenomics,
	CategoryCommunity,
	CategoryDevelopment,
}

// ResolvedToken is the catalog identity behind a raw user input.
type ResolvedToken struct {
	ID              string `json:"id"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	ContractAddress string `json:"contractAddress,omitempty"`
	Blockchain      string `json:"blockchain,omitempty"`
	Image           string `json:"image,omitempty"`
	TwitterHandle   string `json:"twitterHandle,omitempty"`
}

// TokenSearchResult is one entry returned by the token search endpoint.
// Optional numerics are pointers so missing upstream values marshal as null
// instead of zero.
type TokenSearchResult struct {
	ID              string   `json:"id"`
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	Image           string   `json:"image,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`
	MarketCapRank   *int     `json:"market_cap_rank,omitempty"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	TotalVolume     *float64 `json:"total_volume,omitempty"`
	ContractAddress string   `json:"contract_address,omitempty"`
}

// SecurityMetrics holds the raw contract-risk values for one token.
// Null means the source could not provide the value; the sentinel string is
// applied only when formatting for display.
type SecurityMetrics struct {
	TopHolderPct       sql.NullFloat64 `json:"topHolderPct"`
	TopFiveHoldersPct  sql.NullFloat64 `json:"topFiveHoldersPct"`
	HolderCount        sql.NullInt64   `json:"holderCount"`
	OwnershipRenounced sql.NullBool    `json:"ownershipRenounced"`
	Honeypot           sql.NullBool    `json:"honeypot"`
	FreezeAuthority    sql.NullBool    `json:"freezeAuthority"`
	Mintable           sql.NullBool    `json:"mintable"`
	OpenSource         sql.NullBool    `json:"openSource"`
	BuyTaxPct          sql.NullFloat64 `json:"buyTaxPct"`
	SellTaxPct         sql.NullFloat64 `json:"sellTaxPct"`
}

// LiquidityMetrics holds the raw market/pool depth values for one token.
type LiquidityMetrics struct {
	LiquidityUSD      sql.NullFloat64 `json:"liquidityUsd"`
	Volume24hUSD      sql.NullFloat64 `json:"volume24hUsd"`
	MarketCapUSD      sql.NullFloat64 `json:"marketCapUsd"`
	TVLUSD            sql.NullFloat64 `json:"tvlUsd"`
	PoolCount         sql.NullInt64   `json:"poolCount"`
	LiquidityLockDays sql.NullFloat64 `json:"liquidityLockDays"`
}

// TokenomicsMetrics holds the raw supply-distribution values for one token.
type TokenomicsMetrics struct {
	TotalSupply       sql.NullFloat64 `json:"totalSupply"`
	CirculatingSupply sql.NullFloat64 `json:"circulatingSupply"`
	MaxSupply         sql.NullFloat64 `json:"maxSupply"`
	CirculatingPct    sql.NullFloat64 `json:"circulatingPct"`
	MarketCapUSD      sql.NullFloat64 `json:"marketCapUsd"`
	FullyDilutedUSD   sql.NullFloat64 `json:"fullyDilutedUsd"`
}

// CommunityMetrics holds the raw social-presence values for one token.
type CommunityMetrics struct {
	TwitterFollowers  sql.NullInt64   `json:"twitterFollowers"`
	TwitterVerified   sql.NullBool    `json:"twitterVerified"`
	TweetsPerWeek     sql.NullFloat64 `json:"tweetsPerWeek"`
	TelegramMembers   sql.NullInt64   `json:"telegramMembers"`
	RedditSubscribers sql.NullInt64   `json:"redditSubscribers"`
	SentimentUpPct    sql.NullFloat64 `json:"sentimentUpPct"`
}

// DevelopmentMetrics holds the raw repository-activity values for one token.
type DevelopmentMetrics struct {
	Stars         sql.NullInt64   `json:"stars"`
	Forks         sql.NullInt64   `json:"forks"`
	Commits4Weeks sql.NullInt64   `json:"commits4Weeks"`
	Contributors  sql.NullInt64   `json:"contributors"`
	OpenIssues    sql.NullInt64   `json:"openIssues"`
	RepoAgeDays   sql.NullFloat64 `json:"repoAgeDays"`
}

// CategoryScores are the per-axis health scores, each in [0,100].
type CategoryScores struct {
	Security    int `json:"security"`
	Liquidity   int `json:"liquidity"`
	Tokenomics  int `json:"tokenomics"`
	Community   int `json:"community"`
	Development int `json:"development"`
}

// MetricsRecord is the flat presentation record returned to callers. Every
// declared field is always present: display fields carry either a formatted
// value or the "N/A" sentinel, raw fields default to zero values.
type MetricsRecord struct {
	TokenID         string `json:"tokenId"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	ContractAddress string `json:"contractAddress,omitempty"`
	Blockchain      string `json:"blockchain,omitempty"`

	// Security
	TopHoldersPercentage     string  `json:"topHoldersPercentage"`
	TopHoldersPercentageRaw  float64 `json:"topHoldersPercentageRaw"`
	Top5HoldersPercentage    string  `json:"top5HoldersPercentage"`
	Top5HoldersPercentageRaw float64 `json:"top5HoldersPercentageRaw"`
	HolderCount              string  `json:"holderCount"`
	HolderCountRaw           int64   `json:"holderCountRaw"`
	OwnershipRenounced       string  `json:"ownershipRenounced"`
	OwnershipRenouncedRaw    bool    `json:"ownershipRenouncedRaw"`
	Honeypot                 string  `json:"honeypot"`
	HoneypotRaw              bool    `json:"honeypotRaw"`
	FreezeAuthority          string  `json:"freezeAuthority"`
	FreezeAuthorityRaw       bool    `json:"freezeAuthorityRaw"`
	Mintable                 string  `json:"mintable"`
	MintableRaw              bool    `json:"mintableRaw"`
	OpenSource               string  `json:"openSource"`
	OpenSourceRaw            bool    `json:"openSourceRaw"`
	BuyTax                   string  `json:"buyTax"`
	BuyTaxRaw                float64 `json:"buyTaxRaw"`
	SellTax                  string  `json:"sellTax"`
	SellTaxRaw               float64 `json:"sellTaxRaw"`

	// Liquidity
	Liquidity         string  `json:"liquidity"`
	LiquidityRaw      float64 `json:"liquidityRaw"`
	Volume24h         string  `json:"volume24h"`
	Volume24hRaw      float64 `json:"volume24hRaw"`
	MarketCap         string  `json:"marketCap"`
	MarketCapRaw      float64 `json:"marketCapRaw"`
	TVL               string  `json:"tvl"`
	TVLRaw            float64 `json:"tvlRaw"`
	PoolCount         string  `json:"poolCount"`
	PoolCountRaw      int64   `json:"poolCountRaw"`
	LiquidityLock     string  `json:"liquidityLock"`
	LiquidityLockDays float64 `json:"liquidityLockDays"`

	// Tokenomics
	TotalSupply           string  `json:"totalSupply"`
	TotalSupplyRaw        float64 `json:"totalSupplyRaw"`
	CirculatingSupply     string  `json:"circulatingSupply"`
	CirculatingSupplyRaw  float64 `json:"circulatingSupplyRaw"`
	MaxSupply             string  `json:"maxSupply"`
	MaxSupplyRaw          float64 `json:"maxSupplyRaw"`
	CirculatingPercent    string  `json:"circulatingPercent"`
	CirculatingPercentRaw float64 `json:"circulatingPercentRaw"`
	FullyDilutedValuation string  `json:"fullyDilutedValuation"`
	FullyDilutedRaw       float64 `json:"fullyDilutedRaw"`

	// Community
	TwitterFollowers     string  `json:"twitterFollowers"`
	TwitterFollowersRaw  int64   `json:"twitterFollowersRaw"`
	TwitterVerified      string  `json:"twitterVerified"`
	TwitterVerifiedRaw   bool    `json:"twitterVerifiedRaw"`
	TweetsPerWeek        string  `json:"tweetsPerWeek"`
	TweetsPerWeekRaw     float64 `json:"tweetsPerWeekRaw"`
	TelegramMembers      string  `json:"telegramMembers"`
	TelegramMembersRaw   int64   `json:"telegramMembersRaw"`
	RedditSubscribers    string  `json:"redditSubscribers"`
	RedditSubscribersRaw int64   `json:"redditSubscribersRaw"`
	Sentiment            string  `json:"sentiment"`
	SentimentRaw         float64 `json:"sentimentRaw"`

	// Development
	GithubStars      string `json:"githubStars"`
	GithubStarsRaw   int64  `json:"githubStarsRaw"`
	GithubForks      string `json:"githubForks"`
	GithubForksRaw   int64  `json:"githubForksRaw"`
	RecentCommits    string `json:"recentCommits"`
	RecentCommitsRaw int64  `json:"recentCommitsRaw"`
	Contributors     string `json:"contributors"`
	ContributorsRaw  int64  `json:"contributorsRaw"`
	OpenIssues       string `json:"openIssues"`
	OpenIssuesRaw    int64  `json:"openIssuesRaw"`
	RoadmapProgress  string `json:"roadmapProgress"`

	Scores      CategoryScores `json:"scores"`
	HealthScore int            `json:"healthScore"`
	FromCache   bool           `json:"fromCache"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ScanRecord is one append-only row in the scan history.
type ScanRecord struct {
	ID           string         `json:"id" db:"id"`
	TokenID      string         `json:"tokenId" db:"token_id"`
	TokenSymbol  string         `json:"tokenSymbol" db:"token_symbol"`
	TokenName    string         `json:"tokenName" db:"token_name"`
	TokenAddress string         `json:"tokenAddress" db:"token_address"`
	HealthScore  int            `json:"healthScore" db:"health_score"`
	Scores       CategoryScores `json:"scores" db:"category_scores"`
	UserID       string         `json:"userId,omitempty" db:"user_id"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}

// Subscriber maps a user to a billing plan used for daily scan quotas.
type Subscriber struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Plan      string    `json:"plan" db:"plan"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
