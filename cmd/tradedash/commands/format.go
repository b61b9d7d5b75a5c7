package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/tradedash/internal/analytics"
	"github.com/wonny/tradedash/internal/audit"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const separatorWidth = 59

// PrintHeader prints a formatted section header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(strings.Repeat("─", separatorWidth))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(strings.Repeat("═", separatorWidth))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Println(strings.Repeat("─", total))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// formatRatio renders +Inf as ∞
func formatRatio(r analytics.Ratio) string {
	if math.IsInf(float64(r), 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", float64(r))
}

// PrintReport prints a human readable metrics report
func PrintReport(report *audit.Report) {
	PrintHeader("Performance Report")
	PrintKeyValue("Run ID", report.RunID, 16)
	if report.AccountID != "" {
		PrintKeyValue("Account", report.AccountID, 16)
	}
	PrintKeyValue("Trades (input)", fmt.Sprintf("%d", report.TradeCount), 16)
	PrintKeyValue("Fingerprint", report.Fingerprint[:12], 16)

	if !report.Sufficient() {
		PrintWarning("Insufficient data: no completed (won/lost) trades")
		return
	}
	m := report.Metrics

	PrintHeader("Equity")
	PrintKeyValue("Starting", m.StartingBalance.StringFixed(2), 16)
	PrintKeyValue("Final", m.FinalBalance.StringFixed(2), 16)
	PrintKeyValue("Total P&L", m.TotalPnL.StringFixed(2), 16)
	PrintKeyValue("Net return", fmt.Sprintf("%.2f%%", m.NetReturnPct), 16)
	PrintKeyValue("Max drawdown", fmt.Sprintf("%s (%.2f%%)", m.Drawdown.Max.StringFixed(2), m.Drawdown.MaxPct), 16)
	PrintKeyValue("Max DD days", fmt.Sprintf("%d", m.Drawdown.MaxDurationDays), 16)
	PrintKeyValue("Current DD", fmt.Sprintf("%s (%.2f%%)", m.Drawdown.Current.StringFixed(2), m.Drawdown.CurrentPct), 16)

	r := m.Risk
	PrintHeader("Risk")
	returnsBasis := "daily"
	if !m.DailyReturn {
		returnsBasis = "per-trade (small sample)"
	}
	PrintKeyValue("Returns basis", returnsBasis, 16)
	PrintKeyValue("Sharpe", fmt.Sprintf("%.2f", r.Sharpe), 16)
	PrintKeyValue("Sortino", fmt.Sprintf("%.2f", r.Sortino), 16)
	PrintKeyValue("Calmar", fmt.Sprintf("%.2f", r.Calmar), 16)
	PrintKeyValue("Volatility", fmt.Sprintf("%.4f", r.Volatility), 16)
	PrintKeyValue("Win rate", fmt.Sprintf("%.1f%% (%d/%d)", r.WinRate, r.Wins, r.TotalTrades), 16)
	PrintKeyValue("Avg win / loss", fmt.Sprintf("%.2f / %.2f", r.AvgWin, r.AvgLoss), 16)
	PrintKeyValue("Expectancy", fmt.Sprintf("%.2f", r.Expectancy), 16)
	PrintKeyValue("Profit factor", formatRatio(r.ProfitFactor), 16)
	PrintKeyValue("Kelly", fmt.Sprintf("%.2f%%", r.Kelly*100), 16)
	PrintKeyValue("Risk of ruin", fmt.Sprintf("%.2f%%", r.RiskOfRuin*100), 16)

	s := m.Streaks
	current := "loss"
	if s.CurrentIsWin {
		current = "win"
	}
	PrintHeader("Streaks")
	PrintKeyValue("Max wins", fmt.Sprintf("%d", s.MaxConsecutiveWins), 16)
	PrintKeyValue("Max losses", fmt.Sprintf("%d", s.MaxConsecutiveLosses), 16)
	PrintKeyValue("Current", fmt.Sprintf("%d %s", s.Current, current), 16)

	PrintHeader(fmt.Sprintf("By day (%s)", m.Timezone))
	widths := []int{10, 8, 8, 12}
	PrintTableHeader([]string{"Day", "Trades", "Win %", "P&L"}, widths)
	for _, d := range m.ByDay {
		PrintTableRow([]string{d.Name, fmt.Sprintf("%d", d.Trades), fmt.Sprintf("%.1f", d.WinRate), d.PnL.StringFixed(2)}, widths)
	}

	PrintHeader("By hour")
	PrintTableHeader([]string{"Hour", "Trades", "Win %", "P&L"}, widths)
	for _, h := range m.ByHour {
		PrintTableRow([]string{fmt.Sprintf("%02d:00", h.Hour), fmt.Sprintf("%d", h.Trades), fmt.Sprintf("%.1f", h.WinRate), h.PnL.StringFixed(2)}, widths)
	}

	PrintHeader("By month")
	PrintTableHeader([]string{"Month", "Trades", "Return %", "P&L"}, widths)
	for _, mo := range m.ByMonth {
		PrintTableRow([]string{mo.Month, fmt.Sprintf("%d", mo.Trades), fmt.Sprintf("%.2f", mo.ReturnPct), mo.PnL.StringFixed(2)}, widths)
	}

	printLabels("By strategy", m.ByStrategy)
	printLabels("By platform", m.ByPlatform)

	rm := m.RMultiples
	PrintHeader("R-multiples")
	PrintKeyValue("Avg position", fmt.Sprintf("%.2f", rm.AvgPositionSize), 16)
	PrintKeyValue("Risk unit (1R)", fmt.Sprintf("%.2f", rm.RiskUnit), 16)
	PrintKeyValue("Mean R", fmt.Sprintf("%.2f", rm.Mean), 16)
	PrintKeyValue("Total R", fmt.Sprintf("%.2f", rm.Total), 16)
	PrintDoubleSeparator()
}

func printLabels(title string, buckets []analytics.LabelBucket) {
	PrintHeader(title)
	widths := []int{20, 8, 8, 12}
	PrintTableHeader([]string{"Label", "Trades", "Win %", "P&L"}, widths)
	for _, b := range buckets {
		PrintTableRow([]string{b.Label, fmt.Sprintf("%d", b.Trades), fmt.Sprintf("%.1f", b.WinRate), b.PnL.StringFixed(2)}, widths)
	}
}
