package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradedash/internal/analytics"
	"github.com/wonny/tradedash/internal/api/handlers"
	"github.com/wonny/tradedash/internal/audit"
	"github.com/wonny/tradedash/internal/strategyconfig"
	"github.com/wonny/tradedash/internal/trades"
	"github.com/wonny/tradedash/pkg/logger"
	"github.com/wonny/tradedash/pkg/redis"
)

type fakeSource struct {
	records []analytics.TradeRecord
	err     error
	last    trades.Filter
}

func (f *fakeSource) List(_ context.Context, filter trades.Filter) ([]analytics.TradeRecord, error) {
	f.last = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

const strategiesYAML = `
version: "test"
strategies:
  - id: momentum
    label: Momentum
    enabled: true
    platform: alpaca
    allocation: 2500
    params:
      lookback_days: {value: 20, min: 5, max: 120}
`

func sampleRecords() []analytics.TradeRecord {
	base := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	return []analytics.TradeRecord{
		{ID: "t1", Timestamp: base, RealizedPnL: analytics.NewAmount(100), Outcome: analytics.OutcomeWon, Strategy: "momentum"},
		{ID: "t2", Timestamp: base.AddDate(0, 0, 1), RealizedPnL: analytics.NewAmount(-40), Outcome: analytics.OutcomeLost, Strategy: "momentum"},
		{ID: "t3", Timestamp: base.AddDate(0, 0, 2), RealizedPnL: analytics.NewAmount(60), Outcome: analytics.OutcomeWon},
	}
}

func newTestRouter(t *testing.T, src *fakeSource, perSecond int) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strategiesYAML), 0o644))
	store, err := strategyconfig.Open(path)
	require.NoError(t, err)

	log := logger.Nop()
	cache := redis.NewCache(redis.Disabled(), "test")
	analyzer := audit.NewAnalyzer(src, cache, time.Minute, log)

	h := Handlers{
		Trades:     handlers.NewTradeHandler(src, log),
		Analytics:  handlers.NewAnalyticsHandler(analyzer, store, 10000, time.UTC, log),
		Strategies: handlers.NewStrategyHandler(store, log),
	}
	limiter := NewRateLimiter(redis.NewRateLimiter(redis.Disabled(), "test"), perSecond)

	return NewRouter(h, limiter, log)
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, &fakeSource{}, 10), "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListTrades(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	router := newTestRouter(t, src, 10)

	rec := do(t, router, "GET", "/api/trades?account=paper&from=2024-03-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "paper", src.last.AccountID)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), src.last.From)
}

func TestListTradesValidation(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, 10)

	tests := []struct {
		name   string
		target string
	}{
		{"missing account", "/api/trades"},
		{"bad date", "/api/trades?account=a&from=yesterday"},
		{"inverted range", "/api/trades?account=a&from=2024-03-02&to=2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, "GET", tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetMetrics(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	router := newTestRouter(t, src, 10)

	rec := do(t, router, "GET", "/api/analytics/metrics?account=paper&tz=Asia/Seoul", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report audit.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, analytics.StatusOK, report.Status)
	assert.Equal(t, "paper", report.AccountID)
	assert.Equal(t, 3, report.TradeCount)
	assert.NotEmpty(t, report.RunID)
	require.NotNil(t, report.Metrics)
	assert.Equal(t, "Asia/Seoul", report.Metrics.Timezone)
	assert.Equal(t, "120", report.Metrics.TotalPnL.String())
	assert.Equal(t, "10000", report.Metrics.StartingBalance.String())
}

func TestGetMetricsStrategyAllocation(t *testing.T) {
	router := newTestRouter(t, &fakeSource{records: sampleRecords()}, 10)

	rec := do(t, router, "GET", "/api/analytics/metrics?account=paper&strategy=momentum", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report audit.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotNil(t, report.Metrics)
	assert.Equal(t, "2500", report.Metrics.StartingBalance.String())
}

func TestGetMetricsInsufficientData(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, 10)

	rec := do(t, router, "GET", "/api/analytics/metrics?account=paper", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"insufficient_data"`)
	assert.NotContains(t, rec.Body.String(), `"metrics"`)
}

func TestGetMetricsErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    *fakeSource
		target string
		code   int
	}{
		{"bad timezone", &fakeSource{}, "/api/analytics/metrics?account=a&tz=Mars/Olympus", http.StatusBadRequest},
		{"zero balance", &fakeSource{}, "/api/analytics/metrics?account=a&starting_balance=0", http.StatusBadRequest},
		{"bad balance", &fakeSource{}, "/api/analytics/metrics?account=a&starting_balance=abc", http.StatusBadRequest},
		{"nan balance", &fakeSource{}, "/api/analytics/metrics?account=a&starting_balance=NaN", http.StatusBadRequest},
		{"inf balance", &fakeSource{}, "/api/analytics/metrics?account=a&starting_balance=Inf", http.StatusBadRequest},
		{"negative inf balance", &fakeSource{}, "/api/analytics/metrics?account=a&starting_balance=-Inf", http.StatusBadRequest},
		{"store failure", &fakeSource{err: errors.New("db down")}, "/api/analytics/metrics?account=a", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(t, tt.src, 10), "GET", tt.target, nil)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestCompute(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, 10)

	body := `{
		"starting_balance": 1000,
		"timezone": "UTC",
		"trades": [
			{"id": "a", "timestamp": "2024-01-02T10:00:00Z", "realized_pnl": "50", "outcome": "won"},
			{"id": "b", "timestamp": "2024-01-03T10:00:00Z", "realized_pnl": null, "outcome": "lost"},
			{"id": "c", "timestamp": "2024-01-04T10:00:00Z", "realized_pnl": 10, "outcome": "pending"}
		]
	}`
	rec := do(t, router, "POST", "/api/analytics/compute", []byte(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var report audit.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotNil(t, report.Metrics)
	assert.Equal(t, 2, report.Metrics.Risk.TotalTrades, "pending excluded")
	assert.Equal(t, "50", report.Metrics.TotalPnL.String())
	assert.Equal(t, "1050", report.Metrics.FinalBalance.String())
}

func TestComputeRejectsBadInput(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, 10)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"negative balance", `{"starting_balance": -1, "trades": []}`},
		{"bad timezone", `{"timezone": "Nowhere/Land", "trades": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, "POST", "/api/analytics/compute", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestComputeTinyPositionSize(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, 10)

	body := `{
		"starting_balance": 1000,
		"trades": [
			{"id": "a", "timestamp": "2024-01-02T10:00:00Z", "realized_pnl": 100, "position_size": 1e-320, "outcome": "won"}
		]
	}`
	rec := do(t, router, "POST", "/api/analytics/compute", []byte(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var report audit.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotNil(t, report.Metrics)
	assert.Equal(t, 1.0, report.Metrics.RMultiples.AvgPositionSize)
	assert.InDelta(t, 5000.0, report.Metrics.RMultiples.Total, 1e-9)
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, 2)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := do(t, router, "GET", "/api/analytics/metrics?account=a", nil)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Contains(t, codes[2:], http.StatusTooManyRequests)

	// 다른 엔드포인트는 제한 없음
	rec := do(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStrategies(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, 10)

	rec := do(t, router, "GET", "/api/strategies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hash"`)
	assert.Contains(t, rec.Body.String(), `"momentum"`)

	rec = do(t, router, "GET", "/api/strategies/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, "PUT", "/api/strategies/momentum/params", []byte(`{"lookback_days": 30}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"value":30`))

	rec = do(t, router, "PUT", "/api/strategies/momentum/params", []byte(`{"lookback_days": 500}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
