package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tokenhealth/internal/models"

	"github.com/go-resty/resty/v2"
)

// Etherscan provides contract-level data: token supply and the holder
// distribution behind the concentration metrics.
type Etherscan struct {
	http   *resty.Client
	apiKey string
}

func NewEtherscan(baseURL, apiKey string, timeout time.Duration) *Etherscan {
	return &Etherscan{
		http:   newClient(baseURL, timeout),
		apiKey: apiKey,
	}
}

// HolderStats summarizes the top of the holder list as supply percentages.
type HolderStats struct {
	TopHolderPct      float64 `json:"top_holder_pct"`
	TopFiveHoldersPct float64 `json:"top_five_holders_pct"`
	HolderCount       int     `json:"holder_count"`
}

// Every Etherscan response carries this envelope; status "0" with a message
// is how it reports request-level failures.
type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type holderRow struct {
	TokenHolderAddress  string `json:"TokenHolderAddress"`
	TokenHolderQuantity string `json:"TokenHolderQuantity"`
}

func (e *Etherscan) call(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	params["apikey"] = e.apiKey
	var envelope etherscanEnvelope
	resp, err := e.http.R().
		SetContext(ctx).
		SetResult(&envelope).
		SetQueryParams(params).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("etherscan %s: %w: %v", params["action"], models.ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("etherscan %s: status %d: %w", params["action"], resp.StatusCode(), models.ErrUpstream)
	}
	if envelope.Status != "1" {
		return nil, fmt.Errorf("etherscan %s: %s: %w", params["action"], envelope.Message, models.ErrUpstream)
	}
	return envelope.Result, nil
}

// TokenSupply fetches the total on-chain supply in base units.
func (e *Etherscan) TokenSupply(ctx context.Context, address string) (float64, error) {
	result, err := e.call(ctx, map[string]string{
		"module":          "stats",
		"action":          "tokensupply",
		"contractaddress": strings.ToLower(address),
	})
	if err != nil {
		return 0, err
	}

	var raw string
	if err := json.Unmarshal(result, &raw); err != nil {
		return 0, fmt.Errorf("etherscan tokensupply: malformed result: %w", models.ErrUpstream)
	}
	supply, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("etherscan tokensupply: non-numeric result %q: %w", raw, models.ErrUpstream)
	}
	return supply, nil
}

// TopHolders fetches the holder list and converts the largest balances into
// percentages of total supply.
func (e *Etherscan) TopHolders(ctx context.Context, address string) (*HolderStats, error) {
	supply, err := e.TokenSupply(ctx, address)
	if err != nil {
		return nil, err
	}
	if supply <= 0 {
		return nil, fmt.Errorf("etherscan holders %s: zero supply: %w", address, models.ErrUpstream)
	}

	result, err := e.call(ctx, map[string]string{
		"module":          "token",
		"action":          "tokenholderlist",
		"contractaddress": strings.ToLower(address),
		"page":            "1",
		"offset":          "100",
	})
	if err != nil {
		return nil, err
	}

	var rows []holderRow
	if err := json.Unmarshal(result, &rows); err != nil {
		return nil, fmt.Errorf("etherscan holders %s: malformed result: %w", address, models.ErrUpstream)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("etherscan holders %s: empty holder list: %w", address, models.ErrUpstream)
	}

	// The list arrives ordered by balance descending.
	stats := HolderStats{HolderCount: len(rows)}
	for i, row := range rows {
		balance, err := strconv.ParseFloat(row.TokenHolderQuantity, 64)
		if err != nil {
			continue
		}
		pct := balance / supply * 100
		if i == 0 {
			stats.TopHolderPct = pct
		}
		if i < 5 {
			stats.TopFiveHoldersPct += pct
		}
	}
	return &stats, nil
}
