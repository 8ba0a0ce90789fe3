package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tokenhealth/internal/models"

	"github.com/go-resty/resty/v2"
)

// GeckoTerminal provides on-chain pool data (reserves and volumes) for a
// token on a given network.
type GeckoTerminal struct {
	http *resty.Client
}

func NewGeckoTerminal(baseURL string, timeout time.Duration) *GeckoTerminal {
	return &GeckoTerminal{http: newClient(baseURL, timeout)}
}

// PoolStats is the aggregate across a token's top pools.
type PoolStats struct {
	ReserveUSD   float64 `json:"reserve_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
	PoolCount    int     `json:"pool_count"`
}

// GeckoTerminal encodes numerics as JSON strings.
type poolsResponse struct {
	Data []struct {
		Attributes struct {
			ReserveInUSD string `json:"reserve_in_usd"`
			VolumeUSD    struct {
				H24 string `json:"h24"`
			} `json:"volume_usd"`
		} `json:"attributes"`
	} `json:"data"`
}

// networkSlugs maps common blockchain names onto GeckoTerminal network slugs.
var networkSlugs = map[string]string{
	"ethereum":  "eth",
	"eth":       "eth",
	"binance":   "bsc",
	"bsc":       "bsc",
	"polygon":   "polygon_pos",
	"solana":    "solana",
	"avalanche": "avax",
	"arbitrum":  "arbitrum",
	"optimism":  "optimism",
	"base":      "base",
}

// NetworkSlug converts a blockchain name to the slug GeckoTerminal expects,
// passing unknown names through unchanged.
func NetworkSlug(blockchain string) string {
	if slug, ok := networkSlugs[strings.ToLower(blockchain)]; ok {
		return slug
	}
	return strings.ToLower(blockchain)
}

// TopPools fetches the token's pools and sums reserves and 24h volumes.
func (g *GeckoTerminal) TopPools(ctx context.Context, network, address string) (*PoolStats, error) {
	var result poolsResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/networks/%s/tokens/%s/pools", NetworkSlug(network), strings.ToLower(address)))
	if err != nil {
		return nil, fmt.Errorf("geckoterminal pools %s: %w: %v", address, models.ErrUpstream, err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("geckoterminal pools %s: %w", address, models.ErrTokenNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geckoterminal pools %s: status %d: %w", address, resp.StatusCode(), models.ErrUpstream)
	}

	stats := PoolStats{PoolCount: len(result.Data)}
	for _, pool := range result.Data {
		if v, err := strconv.ParseFloat(pool.Attributes.ReserveInUSD, 64); err == nil {
			stats.ReserveUSD += v
		}
		if v, err := strconv.ParseFloat(pool.Attributes.VolumeUSD.H24, 64); err == nil {
			stats.Volume24hUSD += v
		}
	}
	return &stats, nil
}
