package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Options controls a single Compute call
type Options struct {
	// StartingBalance is the account balance before the first trade
	StartingBalance float64

	// Location is the reporting time zone for calendar grouping.
	// nil means UTC.
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// startingBalance converts the balance to a decimal; NaN and ±Inf become 0
func (o Options) startingBalance() decimal.Decimal {
	if math.IsNaN(o.StartingBalance) || math.IsInf(o.StartingBalance, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(o.StartingBalance)
}

// Normalize keeps won/lost trades, coerces amounts and sorts chronologically.
// The input slice is not modified.
func Normalize(records []TradeRecord) []Trade {
	trades := make([]Trade, 0, len(records))

	for _, rec := range records {
		if !rec.Outcome.Completed() {
			continue
		}

		size := rec.PositionSize.Float()
		if size < 0 {
			size = 0
		}

		trades = append(trades, Trade{
			ID:           rec.ID,
			Timestamp:    rec.Timestamp,
			PnL:          decimal.NewFromFloat(rec.RealizedPnL.Float()),
			PositionSize: decimal.NewFromFloat(size),
			Won:          rec.Outcome == OutcomeWon,
			Strategy:     rec.Strategy,
			Platform:     rec.Platform,
		})
	}

	// Stable keeps the store's order for identical timestamps
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})

	return trades
}
