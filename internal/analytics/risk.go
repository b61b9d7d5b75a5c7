package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// TradingDaysPerYear annualises daily statistics
const TradingDaysPerYear = 252

// finite maps NaN and ±Inf to 0.
// Ratios over denormal denominators overflow and must not reach the output.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// meanStdDev returns the mean and population standard deviation
func meanStdDev(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var variance float64
	for _, x := range xs {
		diff := x - mean
		variance += diff * diff
	}
	variance /= float64(len(xs))

	return mean, math.Sqrt(variance)
}

// downsideDeviation is the root-mean-square of the negative returns
func downsideDeviation(xs []float64) float64 {
	var sumSquared float64
	var count int
	for _, x := range xs {
		if x < 0 {
			sumSquared += x * x
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sumSquared / float64(count))
}

// calculateRatios fills the return-based ratios
func calculateRatios(m *RiskMetrics, returns []float64, maxDrawdownPct float64) {
	annualizer := math.Sqrt(TradingDaysPerYear)
	mean, sd := meanStdDev(returns)

	m.Volatility = finite(sd * annualizer)
	if sd > 0 {
		m.Sharpe = finite(mean / sd * annualizer)
	}

	if dd := downsideDeviation(returns); dd > 0 {
		m.Sortino = finite(mean / dd * annualizer)
	}

	m.AnnualizedReturn = finite(mean * TradingDaysPerYear)
	if maxDrawdownPct > 0 {
		m.Calmar = finite(m.AnnualizedReturn * 100 / maxDrawdownPct)
	}
}

// calculatePayoff fills win rate, averages, expectancy, profit factor and Kelly.
// Winners and losers are classified by outcome, not by the sign of the P&L.
func calculatePayoff(m *RiskMetrics, trades []Trade) {
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	largestWin := decimal.Zero
	largestLoss := decimal.Zero

	for _, t := range trades {
		if t.Won {
			m.Wins++
			grossProfit = grossProfit.Add(t.PnL)
			if t.PnL.GreaterThan(largestWin) {
				largestWin = t.PnL
			}
		} else {
			m.Losses++
			grossLoss = grossLoss.Add(t.PnL.Abs())
			if t.PnL.LessThan(largestLoss) {
				largestLoss = t.PnL
			}
		}
	}

	m.TotalTrades = len(trades)
	m.GrossProfit = grossProfit
	m.GrossLoss = grossLoss
	m.LargestWin = largestWin
	m.LargestLoss = largestLoss

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.Wins) / float64(m.TotalTrades) * 100
	}
	if m.Wins > 0 {
		m.AvgWin = finite(grossProfit.InexactFloat64() / float64(m.Wins))
	}
	if m.Losses > 0 {
		m.AvgLoss = finite(grossLoss.InexactFloat64() / float64(m.Losses))
	}

	p := m.WinRate / 100
	q := 1 - p
	m.Expectancy = finite(p*m.AvgWin - q*m.AvgLoss)

	gp, gl := grossProfit.InexactFloat64(), grossLoss.InexactFloat64()
	switch {
	case gl > 0:
		m.ProfitFactor = Ratio(gp / gl)
	case gp > 0:
		m.ProfitFactor = Ratio(math.Inf(1))
	default:
		m.ProfitFactor = 0
	}

	m.Kelly = kellyFraction(p, m.AvgWin, m.AvgLoss)
	m.RiskOfRuin = riskOfRuin(m.Kelly)
}

// kellyFraction is p - q/b with b = avgWin/avgLoss.
// No losses means b is infinite and the q/b term vanishes.
// A zero (or denormal) payoff ratio with losses present sends the fraction
// to -inf; that case reports -1 to stay finite.
func kellyFraction(p, avgWin, avgLoss float64) float64 {
	q := 1 - p
	if avgLoss == 0 {
		return p
	}

	b := avgWin / avgLoss
	if b == 0 {
		if q == 0 {
			return p
		}
		return -1
	}

	k := p - q/b
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return -1
	}
	return k
}

// riskOfRuin maps the Kelly proxy onto 0-100
func riskOfRuin(kelly float64) float64 {
	if kelly <= 0 {
		return 100
	}
	return math.Max(0, (1-kelly)*100)
}
