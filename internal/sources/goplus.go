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

// GoPlus provides contract risk flags: honeypot detection, ownership state,
// taxes, holder concentration and LP lock information.
type GoPlus struct {
	http *resty.Client
}

func NewGoPlus(baseURL string, timeout time.Duration) *GoPlus {
	return &GoPlus{http: newClient(baseURL, timeout)}
}

// SecurityReport is the typed view of one GoPlus token_security row.
type SecurityReport struct {
	Honeypot           bool    `json:"honeypot"`
	OpenSource         bool    `json:"open_source"`
	Mintable           bool    `json:"mintable"`
	TransferPausable   bool    `json:"transfer_pausable"`
	OwnershipRenounced bool    `json:"ownership_renounced"`
	BuyTaxPct          float64 `json:"buy_tax_pct"`
	SellTaxPct         float64 `json:"sell_tax_pct"`
	HolderCount        int64   `json:"holder_count"`
	TopHolderPct       float64 `json:"top_holder_pct"`
	TopFiveHoldersPct  float64 `json:"top_five_holders_pct"`
	LPLockDays         float64 `json:"lp_lock_days"`
	HasLPData          bool    `json:"has_lp_data"`
}

// GoPlus encodes booleans as "0"/"1" strings and numbers as strings.
type goplusRow struct {
	IsHoneypot           string `json:"is_honeypot"`
	IsOpenSource         string `json:"is_open_source"`
	IsMintable           string `json:"is_mintable"`
	TransferPausable     string `json:"transfer_pausable"`
	OwnerAddress         string `json:"owner_address"`
	CanTakeBackOwnership string `json:"can_take_back_ownership"`
	BuyTax               string `json:"buy_tax"`
	SellTax              string `json:"sell_tax"`
	HolderCount          string `json:"holder_count"`
	Holders              []struct {
		Address string `json:"address"`
		Percent string `json:"percent"`
	} `json:"holders"`
	LPHolders []struct {
		IsLocked     int `json:"is_locked"`
		LockedDetail []struct {
			EndTime string `json:"end_time"`
		} `json:"locked_detail"`
	} `json:"lp_holders"`
}

type goplusResponse struct {
	Code    int                  `json:"code"`
	Message string               `json:"message"`
	Result  map[string]goplusRow `json:"result"`
}

// chainIDs maps blockchain names onto GoPlus numeric chain ids.
var chainIDs = map[string]string{
	"ethereum":  "1",
	"eth":       "1",
	"bsc":       "56",
	"binance":   "56",
	"polygon":   "137",
	"arbitrum":  "42161",
	"optimism":  "10",
	"avalanche": "43114",
	"base":      "8453",
}

// ChainID converts a blockchain name to the id GoPlus expects, defaulting to
// Ethereum mainnet.
func ChainID(blockchain string) string {
	if id, ok := chainIDs[strings.ToLower(blockchain)]; ok {
		return id
	}
	return "1"
}

func parseFlag(v string) bool {
	return v == "1"
}

func parseTaxPct(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	// GoPlus reports taxes as fractions of 1.
	tax, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return tax * 100, true
}

// TokenSecurity fetches and types the security row for one contract.
func (g *GoPlus) TokenSecurity(ctx context.Context, blockchain, address string) (*SecurityReport, error) {
	address = strings.ToLower(address)
	var result goplusResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetQueryParam("contract_addresses", address).
		Get("/api/v1/token_security/" + ChainID(blockchain))
	if err != nil {
		return nil, fmt.Errorf("goplus %s: %w: %v", address, models.ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("goplus %s: status %d: %w", address, resp.StatusCode(), models.ErrUpstream)
	}

	row, ok := result.Result[address]
	if !ok {
		return nil, fmt.Errorf("goplus %s: %w", address, models.ErrTokenNotFound)
	}

	report := &SecurityReport{
		Honeypot:         parseFlag(row.IsHoneypot),
		OpenSource:       parseFlag(row.IsOpenSource),
		Mintable:         parseFlag(row.IsMintable),
		TransferPausable: parseFlag(row.TransferPausable),
	}

	// Renounced when the owner slot is burned or empty, unless ownership can
	// be taken back.
	owner := strings.ToLower(row.OwnerAddress)
	burned := owner == "" ||
		owner == "0x0000000000000000000000000000000000000000" ||
		strings.HasSuffix(owner, "dead")
	report.OwnershipRenounced = burned && !parseFlag(row.CanTakeBackOwnership)

	if tax, ok := parseTaxPct(row.BuyTax); ok {
		report.BuyTaxPct = tax
	}
	if tax, ok := parseTaxPct(row.SellTax); ok {
		report.SellTaxPct = tax
	}
	if count, err := strconv.ParseInt(row.HolderCount, 10, 64); err == nil {
		report.HolderCount = count
	}

	for i, holder := range row.Holders {
		pct, err := strconv.ParseFloat(holder.Percent, 64)
		if err != nil {
			continue
		}
		pct *= 100
		if i == 0 {
			report.TopHolderPct = pct
		}
		if i < 5 {
			report.TopFiveHoldersPct += pct
		}
	}

	report.LPLockDays, report.HasLPData = lpLockDays(row, time.Now())
	return report, nil
}

// lpLockDays returns the longest remaining LP lock in days.
func lpLockDays(row goplusRow, now time.Time) (float64, bool) {
	var days float64
	found := false
	for _, lp := range row.LPHolders {
		if lp.IsLocked != 1 {
			continue
		}
		for _, detail := range lp.LockedDetail {
			end, err := time.Parse(time.RFC3339, detail.EndTime)
			if err != nil {
				continue
			}
			if remaining := end.Sub(now).Hours() / 24; remaining > days {
				days = remaining
				found = true
			}
		}
	}
	return days, found
}
