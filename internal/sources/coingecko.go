package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tokenhealth/internal/models"

	"github.com/go-resty/resty/v2"
)

// CoinGecko is the primary market-data source: coin catalog, per-coin market,
// community and developer data, and free-text search.
type CoinGecko struct {
	http   *resty.Client
	apiKey string
}

func NewCoinGecko(baseURL, apiKey string, timeout time.Duration) *CoinGecko {
	return &CoinGecko{
		http:   newClient(baseURL, timeout),
		apiKey: apiKey,
	}
}

// Coin is the subset of the /coins/{id} response the aggregator consumes.
// Optional numerics are pointers: CoinGecko omits or nulls them freely.
type Coin struct {
	ID            string             `json:"id"`
	Symbol        string             `json:"symbol"`
	Name          string             `json:"name"`
	MarketCapRank *int               `json:"market_cap_rank"`
	Platforms     map[string]string  `json:"platforms"`
	GenesisDate   *string            `json:"genesis_date"`
	SentimentUp   *float64           `json:"sentiment_votes_up_percentage"`
	Image         struct {
		Small string `json:"small"`
	} `json:"image"`
	Links struct {
		TwitterScreenName string `json:"twitter_screen_name"`
		ReposURL          struct {
			Github []string `json:"github"`
		} `json:"repos_url"`
	} `json:"links"`
	MarketData struct {
		CurrentPrice          map[string]float64 `json:"current_price"`
		MarketCap             map[string]float64 `json:"market_cap"`
		FullyDilutedValuation map[string]float64 `json:"fully_diluted_valuation"`
		TotalVolume           map[string]float64 `json:"total_volume"`
		TotalSupply           *float64           `json:"total_supply"`
		CirculatingSupply     *float64           `json:"circulating_supply"`
		MaxSupply             *float64           `json:"max_supply"`
	} `json:"market_data"`
	CommunityData struct {
		TwitterFollowers         *int64 `json:"twitter_followers"`
		TelegramChannelUserCount *int64 `json:"telegram_channel_user_count"`
		RedditSubscribers        *int64 `json:"reddit_subscribers"`
	} `json:"community_data"`
	DeveloperData struct {
		Stars                   *int64 `json:"stars"`
		Forks                   *int64 `json:"forks"`
		CommitCount4Weeks       *int64 `json:"commit_count_4_weeks"`
		PullRequestContributors *int64 `json:"pull_request_contributors"`
		TotalIssues             *int64 `json:"total_issues"`
		ClosedIssues            *int64 `json:"closed_issues"`
	} `json:"developer_data"`
}

// CatalogEntry is one row of the /coins/list catalog.
type CatalogEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// SearchCoin is one coin hit from the /search endpoint.
type SearchCoin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Large         string `json:"large"`
	MarketCapRank *int   `json:"market_cap_rank"`
}

type searchResponse struct {
	Coins []SearchCoin `json:"coins"`
}

// MarketRow is one row of /coins/markets, used to enrich search results.
type MarketRow struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Image         string   `json:"image"`
	CurrentPrice  *float64 `json:"current_price"`
	MarketCap     *float64 `json:"market_cap"`
	MarketCapRank *int     `json:"market_cap_rank"`
	TotalVolume   *float64 `json:"total_volume"`
}

func (c *CoinGecko) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if c.apiKey != "" {
		req.SetHeader("x-cg-demo-api-key", c.apiKey)
	}
	return req
}

// CoinByID fetches the full coin record for a catalog id.
func (c *CoinGecko) CoinByID(ctx context.Context, id string) (*Coin, error) {
	var coin Coin
	resp, err := c.request(ctx).
		SetResult(&coin).
		SetQueryParams(map[string]string{
			"localization": "false",
			"tickers":      "false",
			"sparkline":    "false",
		}).
		Get("/coins/" + id)
	if err != nil {
		return nil, fmt.Errorf("coingecko coin %s: %w: %v", id, models.ErrUpstream, err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("coingecko coin %s: %w", id, models.ErrTokenNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko coin %s: status %d: %w", id, resp.StatusCode(), models.ErrUpstream)
	}
	return &coin, nil
}

// CoinByContract fetches the coin record behind a contract address on the
// given platform (e.g. "ethereum").
func (c *CoinGecko) CoinByContract(ctx context.Context, platform, address string) (*Coin, error) {
	var coin Coin
	resp, err := c.request(ctx).
		SetResult(&coin).
		Get(fmt.Sprintf("/coins/%s/contract/%s", platform, strings.ToLower(address)))
	if err != nil {
		return nil, fmt.Errorf("coingecko contract %s: %w: %v", address, models.ErrUpstream, err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("coingecko contract %s: %w", address, models.ErrTokenNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko contract %s: status %d: %w", address, resp.StatusCode(), models.ErrUpstream)
	}
	return &coin, nil
}

// List downloads the full id/symbol/name catalog.
func (c *CoinGecko) List(ctx context.Context) ([]CatalogEntry, error) {
	var catalog []CatalogEntry
	resp, err := c.request(ctx).
		SetResult(&catalog).
		Get("/coins/list")
	if err != nil {
		return nil, fmt.Errorf("coingecko catalog: %w: %v", models.ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko catalog: status %d: %w", resp.StatusCode(), models.ErrUpstream)
	}
	return catalog, nil
}

// Search runs the free-text search endpoint.
func (c *CoinGecko) Search(ctx context.Context, query string) ([]SearchCoin, error) {
	var result searchResponse
	resp, err := c.request(ctx).
		SetResult(&result).
		SetQueryParam("query", query).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("coingecko search %q: %w: %v", query, models.ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko search %q: status %d: %w", query, resp.StatusCode(), models.ErrUpstream)
	}
	return result.Coins, nil
}

// Markets fetches market rows for a set of catalog ids.
func (c *CoinGecko) Markets(ctx context.Context, ids []string) ([]MarketRow, error) {
	var rows []MarketRow
	resp, err := c.request(ctx).
		SetResult(&rows).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"ids":         strings.Join(ids, ","),
			"per_page":    "50",
		}).
		Get("/coins/markets")
	if err != nil {
		return nil, fmt.Errorf("coingecko markets: %w: %v", models.ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko markets: status %d: %w", resp.StatusCode(), models.ErrUpstream)
	}
	return rows, nil
}
