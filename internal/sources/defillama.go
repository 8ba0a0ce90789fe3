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

// DeFiLlama provides protocol TVL by slug.
type DeFiLlama struct {
	http *resty.Client
}

func NewDeFiLlama(baseURL string, timeout time.Duration) *DeFiLlama {
	return &DeFiLlama{http: newClient(baseURL, timeout)}
}

// TVL fetches the current total value locked for a protocol slug.
// The endpoint returns a bare JSON number.
func (d *DeFiLlama) TVL(ctx context.Context, slug string) (float64, error) {
	resp, err := d.http.R().
		SetContext(ctx).
		Get("/tvl/" + strings.ToLower(slug))
	if err != nil {
		return 0, fmt.Errorf("defillama tvl %s: %w: %v", slug, models.ErrUpstream, err)
	}
	if resp.StatusCode() == 404 {
		return 0, fmt.Errorf("defillama tvl %s: %w", slug, models.ErrTokenNotFound)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("defillama tvl %s: status %d: %w", slug, resp.StatusCode(), models.ErrUpstream)
	}

	tvl, err := strconv.ParseFloat(strings.TrimSpace(string(resp.Body())), 64)
	if err != nil {
		return 0, fmt.Errorf("defillama tvl %s: non-numeric body: %w", slug, models.ErrUpstream)
	}
	return tvl, nil
}
