// Package sources contains the HTTP clients for the external data providers.
// Each provider is a black-box JSON API; the aggregator's normalization layer
// absorbs their shape differences.
package sources

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// newClient builds the shared resty client configuration: proxy from the
// environment, two retries with backoff, bounded per-request timeout.
func newClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetTransport(&http.Transport{Proxy: http.ProxyFromEnvironment}).
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")
}
