package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tokenhealth/internal/models"

	"github.com/go-resty/resty/v2"
)

// Apify runs a hosted Twitter scraper actor synchronously and reads the
// resulting dataset items.
type Apify struct {
	http  *resty.Client
	token string
	actor string
}

func NewApify(baseURL, token, actor string, timeout time.Duration) *Apify {
	return &Apify{
		http:  newClient(baseURL, timeout),
		token: token,
		actor: actor,
	}
}

// TwitterProfile is the social snapshot derived from one scraped profile.
type TwitterProfile struct {
	Handle        string  `json:"handle"`
	Followers     int64   `json:"followers"`
	Verified      bool    `json:"verified"`
	TweetsPerWeek float64 `json:"tweets_per_week"`
}

type apifyProfileItem struct {
	UserName       string `json:"userName"`
	FollowersCount int64  `json:"followers"`
	Verified       bool   `json:"isVerified"`
	StatusesCount  int64  `json:"statusesCount"`
	CreatedAt      string `json:"createdAt"`
}

// TwitterProfile scrapes one handle. The actor run is synchronous; the scan
// tolerates its latency because social data is cached for a day.
func (a *Apify) TwitterProfile(ctx context.Context, handle string) (*TwitterProfile, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("apify: empty handle: %w", models.ErrValidation)
	}

	var items []apifyProfileItem
	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&items).
		SetQueryParam("token", a.token).
		SetBody(map[string]any{
			"twitterHandles": []string{handle},
			"getFollowers":   true,
		}).
		Post(fmt.Sprintf("/v2/acts/%s/run-sync-get-dataset-items", a.actor))
	if err != nil {
		return nil, fmt.Errorf("apify profile %s: %w: %v", handle, models.ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("apify profile %s: status %d: %w", handle, resp.StatusCode(), models.ErrUpstream)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("apify profile %s: empty dataset: %w", handle, models.ErrUpstream)
	}

	item := items[0]
	profile := &TwitterProfile{
		Handle:    handle,
		Followers: item.FollowersCount,
		Verified:  item.Verified,
	}

	// Lifetime tweet cadence; Twitter's createdAt uses the ruby date layout.
	if created, err := time.Parse(time.RubyDate, item.CreatedAt); err == nil {
		weeks := time.Since(created).Hours() / (24 * 7)
		if weeks >= 1 {
			profile.TweetsPerWeek = float64(item.StatusesCount) / weeks
		}
	}
	return profile, nil
}
