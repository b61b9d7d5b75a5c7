package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// equityState is the accumulator threaded through the equity fold
type equityState struct {
	balance decimal.Decimal
	peak    decimal.Decimal

	// drawdown duration in distinct calendar days since the last peak
	ddDays    int
	ddLastDay string

	maxDD     decimal.Decimal
	maxDDPct  float64
	maxDDDays int

	point EquityPoint
}

func newEquityState(startingBalance decimal.Decimal) equityState {
	return equityState{
		balance: startingBalance,
		peak:    startingBalance,
		maxDD:   decimal.Zero,
	}
}

// stepEquity applies one trade to the accumulator and returns the new state
func stepEquity(s equityState, t Trade, loc *time.Location) equityState {
	s.balance = s.balance.Add(t.PnL)

	drawdown := decimal.Zero
	drawdownPct := 0.0

	if s.balance.GreaterThan(s.peak) {
		// strictly new high: drawdown over
		s.peak = s.balance
		s.ddDays = 0
		s.ddLastDay = ""
	} else {
		drawdown = s.peak.Sub(s.balance)
		if s.peak.IsPositive() {
			drawdownPct = finite(drawdown.Div(s.peak).Mul(hundred).InexactFloat64())
		}

		day := dayKey(t.Timestamp, loc)
		if day != s.ddLastDay {
			s.ddDays++
			s.ddLastDay = day
		}

		if drawdown.GreaterThan(s.maxDD) {
			s.maxDD = drawdown
		}
		if drawdownPct > s.maxDDPct {
			s.maxDDPct = drawdownPct
		}
		if s.ddDays > s.maxDDDays {
			s.maxDDDays = s.ddDays
		}
	}

	s.point = EquityPoint{
		Date:        t.Timestamp,
		Balance:     s.balance,
		Peak:        s.peak,
		Drawdown:    drawdown,
		DrawdownPct: drawdownPct,
	}
	return s
}

// equityCurve is the output of the equity pass
type equityCurve struct {
	points   []EquityPoint
	returns  []float64
	daily    bool
	drawdown Drawdown
	final    decimal.Decimal
}

// buildEquityCurve folds the normalized trades into an equity series
func buildEquityCurve(trades []Trade, startingBalance decimal.Decimal, loc *time.Location) equityCurve {
	state := newEquityState(startingBalance)
	points := make([]EquityPoint, 0, len(trades))

	for _, t := range trades {
		state = stepEquity(state, t, loc)
		points = append(points, state.point)
	}

	curve := equityCurve{
		points: points,
		final:  state.balance,
		drawdown: Drawdown{
			Max:             state.maxDD,
			MaxPct:          state.maxDDPct,
			MaxDurationDays: state.maxDDDays,
			Current:         state.point.Drawdown,
			CurrentPct:      state.point.DrawdownPct,
			CurrentDays:     state.ddDays,
		},
	}
	curve.returns, curve.daily = returnSeries(trades, points, startingBalance, loc)
	return curve
}

// returnSeries computes day-over-day fractional balance changes.
// With fewer than two calendar days there is nothing to difference, so it
// falls back to per-trade returns against the starting balance.
func returnSeries(trades []Trade, points []EquityPoint, startingBalance decimal.Decimal, loc *time.Location) ([]float64, bool) {
	type dayClose struct {
		day     string
		balance decimal.Decimal
	}

	closes := make([]dayClose, 0)
	for i, t := range trades {
		day := dayKey(t.Timestamp, loc)
		if n := len(closes); n > 0 && closes[n-1].day == day {
			closes[n-1].balance = points[i].Balance
			continue
		}
		closes = append(closes, dayClose{day: day, balance: points[i].Balance})
	}

	if len(closes) < 2 {
		returns := make([]float64, 0, len(trades))
		for _, t := range trades {
			if !startingBalance.IsPositive() {
				returns = append(returns, 0)
				continue
			}
			returns = append(returns, finite(t.PnL.Div(startingBalance).InexactFloat64()))
		}
		return returns, false
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1].balance
		if !prev.IsPositive() {
			continue
		}
		returns = append(returns, finite(closes[i].balance.Sub(prev).Div(prev).InexactFloat64()))
	}
	return returns, true
}

func dayKey(ts time.Time, loc *time.Location) string {
	return ts.In(loc).Format("2006-01-02")
}
