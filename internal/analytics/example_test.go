package analytics_test

import (
	"fmt"
	"time"

	"github.com/wonny/tradedash/internal/analytics"
)

func ExampleCompute() {
	base := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)
	records := []analytics.TradeRecord{
		{ID: "1", Timestamp: base, RealizedPnL: analytics.NewAmount(500), Outcome: analytics.OutcomeWon},
		{ID: "2", Timestamp: base.AddDate(0, 0, 1), RealizedPnL: analytics.NewAmount(-200), Outcome: analytics.OutcomeLost},
		{ID: "3", Timestamp: base.AddDate(0, 0, 2), RealizedPnL: analytics.NewAmount(300), Outcome: analytics.OutcomeWon},
		{ID: "4", Timestamp: base.AddDate(0, 0, 3), RealizedPnL: analytics.NewAmount(999), Outcome: analytics.OutcomePending},
	}

	result := analytics.Compute(records, analytics.Options{StartingBalance: 10000})
	if !result.Sufficient() {
		fmt.Println("insufficient data")
		return
	}

	m := result.Metrics
	fmt.Println("trades:", m.Risk.TotalTrades)
	fmt.Println("total pnl:", m.TotalPnL)
	fmt.Printf("win rate: %.1f%%\n", m.Risk.WinRate)
	fmt.Printf("profit factor: %.1f\n", float64(m.Risk.ProfitFactor))
	fmt.Printf("expectancy: %.0f\n", m.Risk.Expectancy)
	// Output:
	// trades: 3
	// total pnl: 600
	// win rate: 66.7%
	// profit factor: 4.0
	// expectancy: 200
}
