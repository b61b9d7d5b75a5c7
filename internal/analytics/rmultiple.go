package analytics

import "github.com/shopspring/decimal"

// RiskUnitFraction sizes one R as a fraction of the average position.
// This is a proxy: the trade data carries no stop-loss distance.
const RiskUnitFraction = 0.02

// minNormalFloat is the smallest positive normal float64
const minNormalFloat = 0x1p-1022

// calculateRMultiples expresses each trade's P&L in units of R
func calculateRMultiples(trades []Trade) RMultiples {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.PositionSize)
	}

	avgSize := 0.0
	if len(trades) > 0 {
		avgSize = total.InexactFloat64() / float64(len(trades))
	}
	// tiny averages make pnl/R overflow; fall back to a size of 1
	if avgSize*RiskUnitFraction < minNormalFloat {
		avgSize = 1
	}

	r := RMultiples{
		AvgPositionSize: avgSize,
		RiskUnit:        avgSize * RiskUnitFraction,
		PerTrade:        make([]float64, 0, len(trades)),
	}

	for _, t := range trades {
		m := finite(t.PnL.InexactFloat64() / r.RiskUnit)
		r.PerTrade = append(r.PerTrade, m)
		r.Total += m
	}
	r.Total = finite(r.Total)
	if len(trades) > 0 {
		r.Mean = finite(r.Total / float64(len(trades)))
	}

	return r
}
