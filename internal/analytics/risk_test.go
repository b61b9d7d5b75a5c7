package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanStdDev(t *testing.T) {
	mean, sd := meanStdDev([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, mean, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), sd, 1e-12, "population σ")

	mean, sd = meanStdDev(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, sd)
}

func TestDownsideDeviation(t *testing.T) {
	assert.InDelta(t, math.Sqrt((0.0009+0.0016)/2), downsideDeviation([]float64{-0.03, 0.01, -0.04}), 1e-12)
	assert.Equal(t, 0.0, downsideDeviation([]float64{0.01, 0}))
}

func TestCalculateRatios(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.02}
	mean, sd := meanStdDev(returns)
	dd := downsideDeviation(returns)

	var m RiskMetrics
	calculateRatios(&m, returns, 5)

	assert.InDelta(t, mean/sd*math.Sqrt(252), m.Sharpe, 1e-9)
	assert.InDelta(t, mean/dd*math.Sqrt(252), m.Sortino, 1e-9)
	assert.InDelta(t, mean*252, m.AnnualizedReturn, 1e-9)
	assert.InDelta(t, mean*252*100/5, m.Calmar, 1e-9)
	assert.InDelta(t, sd*math.Sqrt(252), m.Volatility, 1e-9)
}

func TestCalculateRatiosDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		maxDD   float64
	}{
		{"empty", nil, 0},
		{"zero variance", []float64{0.01, 0.01, 0.01}, 0},
		{"all zero", []float64{0, 0}, 3},
		{"overflowing mean", []float64{1.7e308, 1.7e308}, 1},
		{"overflowing variance", []float64{1e300, -1e300}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m RiskMetrics
			calculateRatios(&m, tt.returns, tt.maxDD)

			assert.Equal(t, 0.0, m.Sharpe)
			assert.Equal(t, 0.0, m.Sortino)
			for _, v := range []float64{m.Calmar, m.Volatility, m.AnnualizedReturn} {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		})
	}
}

func TestKellyAndRuin(t *testing.T) {
	tests := []struct {
		name    string
		p       float64
		avgWin  float64
		avgLoss float64
		kelly   float64
		ruin    float64
	}{
		{"edge", 0.5, 200, 100, 0.25, 75},
		{"no losses", 1, 50, 0, 1, 0},
		{"no edge", 0.3, 100, 100, -0.4, 100},
		{"no wins", 0, 0, 100, -1, 100},
		{"break even", 0.5, 100, 100, 0, 100},
		{"denormal payoff", 0.5, 1e-310, 1, -1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := kellyFraction(tt.p, tt.avgWin, tt.avgLoss)
			assert.InDelta(t, tt.kelly, k, 1e-9)
			assert.InDelta(t, tt.ruin, riskOfRuin(k), 1e-9)
		})
	}
}

func TestCalculatePayoffClassifiesByOutcome(t *testing.T) {
	// a "won" trade with negative P&L still counts as a win
	trades := []Trade{
		trade(day0, 100),
		{Timestamp: day0, PnL: trade(day0, -5).PnL, Won: true},
		trade(day0, -50),
	}

	var m RiskMetrics
	calculatePayoff(&m, trades)

	assert.Equal(t, 2, m.Wins)
	assert.Equal(t, 1, m.Losses)
	assert.Equal(t, "95", m.GrossProfit.String())
	assert.Equal(t, "50", m.GrossLoss.String())
}

func TestCalculatePayoffZeroPnL(t *testing.T) {
	trades := []Trade{trade(day0, 0), trade(day0, 0)}

	var m RiskMetrics
	calculatePayoff(&m, trades)

	assert.Equal(t, Ratio(0), m.ProfitFactor)
	assert.Equal(t, 0.0, m.Expectancy)
}
