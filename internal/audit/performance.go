package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wonny/tradedash/internal/analytics"
	"github.com/wonny/tradedash/internal/trades"
	"github.com/wonny/tradedash/pkg/logger"
	"github.com/wonny/tradedash/pkg/redis"
)

// TradeSource supplies the trades visible to one account
type TradeSource interface {
	List(ctx context.Context, f trades.Filter) ([]analytics.TradeRecord, error)
}

// Analyzer runs the analytics engine over stored trades.
// The engine itself is cache-free; memoization on the trade-set fingerprint lives here.
// ⭐ SSOT: 성과 분석 호출은 여기서만
type Analyzer struct {
	source   TradeSource
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewAnalyzer creates a new performance analyzer.
// A non-positive cacheTTL uses redis.DefaultMetricsTTL.
func NewAnalyzer(source TradeSource, cache *redis.Cache, cacheTTL time.Duration, log *logger.Logger) *Analyzer {
	if cacheTTL <= 0 {
		cacheTTL = redis.DefaultMetricsTTL
	}
	return &Analyzer{
		source:   source,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Request describes one metrics computation
type Request struct {
	Filter          trades.Filter
	StartingBalance float64
	Location        *time.Location
}

// Report wraps an engine result with run metadata
type Report struct {
	RunID       string    `json:"run_id"`
	AccountID   string    `json:"account_id"`
	Fingerprint string    `json:"fingerprint"`
	TradeCount  int       `json:"trade_count"`
	ComputedAt  time.Time `json:"computed_at"`
	Cached      bool      `json:"cached"`

	analytics.Result
}

// Fingerprint hashes the trade set and options (canonical JSON → SHA256)
func Fingerprint(records []analytics.TradeRecord, opts analytics.Options) (string, error) {
	loc := "UTC"
	if opts.Location != nil {
		loc = opts.Location.String()
	}

	payload := struct {
		Trades          []analytics.TradeRecord `json:"trades"`
		StartingBalance float64                 `json:"starting_balance"`
		Location        string                  `json:"location"`
	}{records, opts.StartingBalance, loc}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Analyze loads the account's trades and computes metrics
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	records, err := a.source.List(ctx, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}

	opts := analytics.Options{
		StartingBalance: req.StartingBalance,
		Location:        req.Location,
	}

	fingerprint, err := Fingerprint(records, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint trades: %w", err)
	}

	key := redis.MetricsKey(req.Filter.AccountID, fingerprint)

	var cached Report
	found, err := a.cache.Get(ctx, key, &cached)
	if err != nil {
		a.logger.WithError(err).Warn("Metrics cache read failed")
	}
	if found {
		cached.Cached = true
		return &cached, nil
	}

	report := a.compute(req.Filter.AccountID, fingerprint, records, opts)

	if err := a.cache.Set(ctx, key, report, a.cacheTTL); err != nil {
		// 캐시 실패는 결과에 영향 없음
		a.logger.WithError(err).Warn("Metrics cache write failed")
	}

	return report, nil
}

// AnalyzeRecords computes metrics for caller-supplied trades without touching the store or cache
func (a *Analyzer) AnalyzeRecords(records []analytics.TradeRecord, opts analytics.Options) (*Report, error) {
	fingerprint, err := Fingerprint(records, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint trades: %w", err)
	}
	return a.compute("", fingerprint, records, opts), nil
}

func (a *Analyzer) compute(account, fingerprint string, records []analytics.TradeRecord, opts analytics.Options) *Report {
	start := time.Now()
	result := analytics.Compute(records, opts)

	report := &Report{
		RunID:       ulid.Make().String(),
		AccountID:   account,
		Fingerprint: fingerprint,
		TradeCount:  len(records),
		ComputedAt:  time.Now().UTC(),
		Result:      result,
	}

	fields := map[string]interface{}{
		"run_id":   report.RunID,
		"account":  account,
		"trades":   len(records),
		"status":   result.Status,
		"duration": time.Since(start),
	}
	if result.Sufficient() {
		fields["total_pnl"] = result.Metrics.TotalPnL.String()
		fields["sharpe"] = result.Metrics.Risk.Sharpe
		fields["max_drawdown_pct"] = result.Metrics.Drawdown.MaxPct
		fields["win_rate"] = result.Metrics.Risk.WinRate
	}
	a.logger.WithFields(fields).Info("Performance analysis completed")

	return report
}

// Warm recomputes metrics for each account so dashboard reads hit the cache
func (a *Analyzer) Warm(ctx context.Context, accounts []string, startingBalance float64, loc *time.Location) error {
	var failed int
	for _, account := range accounts {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, err := a.Analyze(ctx, Request{
			Filter:          trades.Filter{AccountID: account},
			StartingBalance: startingBalance,
			Location:        loc,
		})
		if err != nil {
			failed++
			a.logger.WithError(err).WithField("account", account).Warn("Metrics warm failed")
		}
	}

	if failed > 0 {
		return fmt.Errorf("metrics warm failed for %d of %d accounts", failed, len(accounts))
	}
	return nil
}
