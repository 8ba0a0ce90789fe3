package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokenhealth/internal/aggregator"
	"tokenhealth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetrics struct {
	record  *models.MetricsRecord
	err     error
	lastReq aggregator.Request
}

func (f *fakeMetrics) GetMetrics(_ context.Context, req aggregator.Request) (*models.MetricsRecord, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

type fakeResolve struct {
	resolved *models.ResolvedToken
	results  []models.TokenSearchResult
	err      error
}

func (f *fakeResolve) Resolve(_ context.Context, _ string) (*models.ResolvedToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resolved, nil
}

func (f *fakeResolve) Search(_ context.Context, _ string) ([]models.TokenSearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeQuota struct {
	err   error
	limit int
}

func (f *fakeQuota) Check(_ context.Context, _ string, _ time.Time) error { return f.err }
func (f *fakeQuota) DailyLimit(_ string) int                              { return f.limit }

type fakeRecorder struct {
	scans []*models.ScanRecord
}

func (f *fakeRecorder) Record(scan *models.ScanRecord) bool {
	f.scans = append(f.scans, scan)
	return true
}

type fakeScans struct {
	rows []models.ScanRecord
	err  error
}

func (f *fakeScans) RecentScans(_ context.Context, _ int) ([]models.ScanRecord, error) {
	return f.rows, f.err
}

type harness struct {
	metrics  *fakeMetrics
	resolve  *fakeResolve
	quota    *fakeQuota
	recorder *fakeRecorder
	scans    *fakeScans
	server   *Server
}

func newHarness(username, password string) *harness {
	h := &harness{
		metrics: &fakeMetrics{record: &models.MetricsRecord{
			TokenID:     "pepe",
			Symbol:      "pepe",
			Name:        "Pepe",
			HealthScore: 72,
			FromCache:   true,
		}},
		resolve: &fakeResolve{
			resolved: &models.ResolvedToken{ID: "pepe", Symbol: "pepe", Name: "Pepe"},
			results:  []models.TokenSearchResult{{ID: "pepe", Symbol: "pepe", Name: "Pepe"}},
		},
		quota:    &fakeQuota{limit: 5},
		recorder: &fakeRecorder{},
		scans:    &fakeScans{rows: []models.ScanRecord{{ID: "scan-1", TokenID: "pepe"}}},
	}
	h.server = NewServer(Config{
		Metrics:      h.metrics,
		Resolver:     h.resolve,
		Quota:        h.quota,
		Recorder:     h.recorder,
		Scans:        h.scans,
		AuthUsername: username,
		AuthPassword: password,
	}).WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	return h
}

func postJSON(t *testing.T, h *harness, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.server.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealthz(t *testing.T) {
	h := newHarness("", "")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := h.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestResolveToken(t *testing.T) {
	h := newHarness("", "")
	resp := postJSON(t, h, "/api/v1/token/resolve", map[string]string{"token": "$PEPE"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pepe", decodeBody(t, resp)["id"])
}

func TestResolveTokenNotFound(t *testing.T) {
	h := newHarness("", "")
	h.resolve.err = fmt.Errorf("no source entity: %w", models.ErrTokenNotFound)
	resp := postJSON(t, h, "/api/v1/token/resolve", map[string]string{"token": "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchTokens(t *testing.T) {
	h := newHarness("", "")
	resp := postJSON(t, h, "/api/v1/token/search", map[string]string{"query": "pepe"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["results"], 1)
}

func TestSearchValidationError(t *testing.T) {
	h := newHarness("", "")
	h.resolve.err = fmt.Errorf("empty search query: %w", models.ErrValidation)
	resp := postJSON(t, h, "/api/v1/token/search", map[string]string{"query": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTokenMetricsRecordsScan(t *testing.T) {
	h := newHarness("", "")
	resp := postJSON(t, h, "/api/v1/token/metrics", map[string]any{
		"token":  "pepe",
		"userId": "user-1",
		"mode":   "security-only",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	metrics := body["metrics"].(map[string]any)
	assert.Equal(t, "pepe", metrics["tokenId"])

	assert.Equal(t, "security-only", h.metrics.lastReq.Mode)
	require.Len(t, h.recorder.scans, 1)
	scan := h.recorder.scans[0]
	assert.NotEmpty(t, scan.ID)
	assert.Equal(t, "pepe", scan.TokenID)
	assert.Equal(t, 72, scan.HealthScore)
	assert.Equal(t, "user-1", scan.UserID)
}

func TestTokenMetricsQuotaExceeded(t *testing.T) {
	h := newHarness("", "")
	h.quota.err = fmt.Errorf("5 of 5 scans used: %w", models.ErrQuotaExceeded)

	resp := postJSON(t, h, "/api/v1/token/metrics", map[string]any{"token": "pepe", "userId": "user-1"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(5), body["dailyLimit"])
	assert.Empty(t, h.recorder.scans)
}

func TestTokenMetricsUpstreamFailure(t *testing.T) {
	h := newHarness("", "")
	h.metrics.err = fmt.Errorf("coingecko: %w", models.ErrUpstream)
	resp := postJSON(t, h, "/api/v1/token/metrics", map[string]any{"token": "pepe"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Empty(t, h.recorder.scans)
}

func TestTokenTokenomics(t *testing.T) {
	h := newHarness("", "")
	resp := postJSON(t, h, "/api/v1/token/tokenomics", map[string]string{
		"contractAddress": "0x6982508145454CE325dDbE47a25d4ec3d2311933",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["cached"])
	assert.Equal(t, "tokenomics-only", h.metrics.lastReq.Mode)
	// Address was normalized before hitting the aggregator.
	assert.Equal(t, "0x6982508145454ce325ddbe47a25d4ec3d2311933", h.metrics.lastReq.Token)
}

func TestTokenTokenomicsRejectsBadAddress(t *testing.T) {
	h := newHarness("", "")
	for _, address := range []string{"", "pepe", "0x123", "6982508145454ce325ddbe47a25d4ec3d2311933"} {
		resp := postJSON(t, h, "/api/v1/token/tokenomics", map[string]string{"contractAddress": address})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "address %q", address)
	}
}

func TestRecentScansRequiresAuth(t *testing.T) {
	h := newHarness("admin", "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/recent", nil)
	resp, err := h.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/scans/recent", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:wrong")))
	resp, err = h.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/scans/recent", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	resp, err = h.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["scans"], 1)
}

func TestRecentScansAuthDisabledWhenUnconfigured(t *testing.T) {
	h := newHarness("", "")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/recent", nil)
	resp, err := h.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
