// Package analytics computes trade performance metrics.
//
// Compute is a pure function: it reads the supplied trades, owns no state
// between calls and is safe to call concurrently. Callers that want to avoid
// recomputation cache results themselves (see audit.Analyzer).
package analytics

import "sync"

// Compute runs every analytics pass over the trade set.
// With no won/lost trades it returns StatusInsufficientData and no metrics.
func Compute(records []TradeRecord, opts Options) Result {
	trades := Normalize(records)
	if len(trades) == 0 {
		return Result{Status: StatusInsufficientData}
	}

	loc := opts.location()
	start := opts.startingBalance()

	curve := buildEquityCurve(trades, start, loc)

	m := &Metrics{
		StartingBalance: start,
		FinalBalance:    curve.final,
		TotalPnL:        curve.final.Sub(start),
		Timezone:        loc.String(),
		Equity:          curve.points,
		Returns:         curve.returns,
		DailyReturn:     curve.daily,
		Drawdown:        curve.drawdown,
	}
	if start.IsPositive() {
		m.NetReturnPct = finite(m.TotalPnL.Div(start).Mul(hundred).InexactFloat64())
	}

	// Independent passes; each goroutine writes its own fields
	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		calculateRatios(&m.Risk, curve.returns, curve.drawdown.MaxPct)
		calculatePayoff(&m.Risk, trades)
	}()
	go func() {
		defer wg.Done()
		m.Streaks = calculateStreaks(trades)
	}()
	go func() {
		defer wg.Done()
		m.ByDay = aggregateByDay(trades, loc)
		m.ByHour = aggregateByHour(trades, loc)
		m.ByMonth = aggregateByMonth(trades, start, loc)
	}()
	go func() {
		defer wg.Done()
		m.RMultiples = calculateRMultiples(trades)
	}()
	go func() {
		defer wg.Done()
		m.ByStrategy = aggregateByLabel(trades, func(t Trade) string { return t.Strategy })
		m.ByPlatform = aggregateByLabel(trades, func(t Trade) string { return t.Platform })
	}()
	wg.Wait()

	return Result{Status: StatusOK, Metrics: m}
}
