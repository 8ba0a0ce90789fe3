package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokenhealth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x6982508145454ce325ddbe47a25d4ec3d2311933"

func TestChainID(t *testing.T) {
	assert.Equal(t, "1", ChainID("ethereum"))
	assert.Equal(t, "56", ChainID("BSC"))
	assert.Equal(t, "8453", ChainID("base"))
	// Unknown chains default to Ethereum mainnet.
	assert.Equal(t, "1", ChainID("solana"))
	assert.Equal(t, "1", ChainID(""))
}

func TestTokenSecurityParsesRow(t *testing.T) {
	lockEnd := time.Now().Add(200 * 24 * time.Hour).Format(time.RFC3339)
	body := fmt.Sprintf(`{
		"code": 1,
		"message": "ok",
		"result": {
			%q: {
				"is_honeypot": "0",
				"is_open_source": "1",
				"is_mintable": "0",
				"transfer_pausable": "0",
				"owner_address": "0x000000000000000000000000000000000000dead",
				"can_take_back_ownership": "0",
				"buy_tax": "0.01",
				"sell_tax": "0.05",
				"holder_count": "280000",
				"holders": [
					{"address": "0xaaa", "percent": "0.061"},
					{"address": "0xbbb", "percent": "0.040"},
					{"address": "0xccc", "percent": "0.030"}
				],
				"lp_holders": [
					{"is_locked": 1, "locked_detail": [{"end_time": %q}]},
					{"is_locked": 0}
				]
			}
		}
	}`, testAddress, lockEnd)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/token_security/1", r.URL.Path)
		assert.Equal(t, testAddress, r.URL.Query().Get("contract_addresses"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	g := NewGoPlus(srv.URL, 5*time.Second)
	report, err := g.TokenSecurity(context.Background(), "ethereum", testAddress)
	require.NoError(t, err)

	assert.False(t, report.Honeypot)
	assert.True(t, report.OpenSource)
	assert.True(t, report.OwnershipRenounced)
	assert.InDelta(t, 1.0, report.BuyTaxPct, 1e-9)
	assert.InDelta(t, 5.0, report.SellTaxPct, 1e-9)
	assert.Equal(t, int64(280000), report.HolderCount)
	assert.InDelta(t, 6.1, report.TopHolderPct, 1e-9)
	assert.InDelta(t, 13.1, report.TopFiveHoldersPct, 1e-9)
	assert.True(t, report.HasLPData)
	assert.InDelta(t, 200, report.LPLockDays, 1)
}

func TestTokenSecurityOwnerNotRenouncedWhenReclaimable(t *testing.T) {
	body := fmt.Sprintf(`{
		"code": 1,
		"result": {
			%q: {
				"owner_address": "",
				"can_take_back_ownership": "1"
			}
		}
	}`, testAddress)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	g := NewGoPlus(srv.URL, 5*time.Second)
	report, err := g.TokenSecurity(context.Background(), "ethereum", testAddress)
	require.NoError(t, err)
	assert.False(t, report.OwnershipRenounced)
	assert.False(t, report.HasLPData)
}

func TestTokenSecurityUnknownContract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code": 1, "result": {}}`)
	}))
	defer srv.Close()

	g := NewGoPlus(srv.URL, 5*time.Second)
	_, err := g.TokenSecurity(context.Background(), "ethereum", testAddress)
	assert.ErrorIs(t, err, models.ErrTokenNotFound)
}

func TestTokenSecurityUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGoPlus(srv.URL, 5*time.Second)
	_, err := g.TokenSecurity(context.Background(), "ethereum", testAddress)
	assert.ErrorIs(t, err, models.ErrUpstream)
}
