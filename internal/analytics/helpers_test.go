package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var day0 = time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC) // Monday

func rec(id string, ts time.Time, pnl float64, outcome Outcome) TradeRecord {
	return TradeRecord{
		ID:          id,
		Timestamp:   ts,
		RealizedPnL: NewAmount(pnl),
		Outcome:     outcome,
	}
}

func outcomeFor(pnl float64) Outcome {
	if pnl >= 0 {
		return OutcomeWon
	}
	return OutcomeLost
}

// dailyRecords places one trade per calendar day starting at day0
func dailyRecords(pnls ...float64) []TradeRecord {
	records := make([]TradeRecord, len(pnls))
	for i, p := range pnls {
		records[i] = rec(string(rune('a'+i)), day0.AddDate(0, 0, i), p, outcomeFor(p))
	}
	return records
}

func assertFinite(t *testing.T, m *Metrics) {
	t.Helper()

	values := map[string]float64{
		"net_return_pct":    m.NetReturnPct,
		"drawdown.max_pct":  m.Drawdown.MaxPct,
		"drawdown.cur_pct":  m.Drawdown.CurrentPct,
		"sharpe":            m.Risk.Sharpe,
		"sortino":           m.Risk.Sortino,
		"calmar":            m.Risk.Calmar,
		"volatility":        m.Risk.Volatility,
		"annualized_return": m.Risk.AnnualizedReturn,
		"win_rate":          m.Risk.WinRate,
		"avg_win":           m.Risk.AvgWin,
		"avg_loss":          m.Risk.AvgLoss,
		"expectancy":        m.Risk.Expectancy,
		"kelly":             m.Risk.Kelly,
		"risk_of_ruin":      m.Risk.RiskOfRuin,
		"r.avg_size":        m.RMultiples.AvgPositionSize,
		"r.unit":            m.RMultiples.RiskUnit,
		"r.mean":            m.RMultiples.Mean,
		"r.total":           m.RMultiples.Total,
	}
	for name, v := range values {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s = %v", name, v)
	}

	// profit factor may be +Inf, never NaN
	assert.False(t, math.IsNaN(float64(m.Risk.ProfitFactor)))

	for i, r := range m.Returns {
		assert.False(t, math.IsNaN(r) || math.IsInf(r, 0), "returns[%d] = %v", i, r)
	}
	for i, p := range m.Equity {
		assert.False(t, math.IsNaN(p.DrawdownPct), "equity[%d].drawdown_pct", i)
	}
	for _, b := range m.ByMonth {
		assert.False(t, math.IsNaN(b.ReturnPct), "month %s", b.Month)
	}
	for _, r := range m.RMultiples.PerTrade {
		assert.False(t, math.IsNaN(r) || math.IsInf(r, 0))
	}
}
