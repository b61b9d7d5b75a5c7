package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the settlement state of a trade
type Outcome string

const (
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomePending Outcome = "pending"
	OutcomeFailed  Outcome = "failed"
)

// ParseOutcome maps a raw status string onto the closed Outcome set.
// Unknown values return ok=false and are excluded during normalization.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "won", "win":
		return OutcomeWon, true
	case "lost", "loss":
		return OutcomeLost, true
	case "pending", "open":
		return OutcomePending, true
	case "failed", "failed_execution", "failed-execution":
		return OutcomeFailed, true
	default:
		return Outcome(s), false
	}
}

// Completed reports whether the outcome participates in analytics
func (o Outcome) Completed() bool {
	return o == OutcomeWon || o == OutcomeLost
}

// UnmarshalJSON keeps unknown strings as-is; Completed() rejects them later
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*o = ""
		return nil
	}
	parsed, _ := ParseOutcome(s)
	*o = parsed
	return nil
}

// Amount is an optional currency amount.
// JSON numbers and numeric strings decode to a valid amount; null, missing or
// non-numeric input decodes to an absent one.
type Amount struct {
	Value float64
	Valid bool
}

// NewAmount returns a present amount
func NewAmount(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

// Float returns the amount, coercing absent / NaN / Inf to 0
func (a Amount) Float() float64 {
	if !a.Valid || math.IsNaN(a.Value) || math.IsInf(a.Value, 0) {
		return 0
	}
	return a.Value
}

// UnmarshalJSON never fails: malformed values become an absent amount
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*a = Amount{Value: v, Valid: true}
	return nil
}

// MarshalJSON writes null for an absent amount
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Float())
}

// TradeRecord is a single trade as supplied by the trade store
type TradeRecord struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	RealizedPnL  Amount    `json:"realized_pnl"`
	PositionSize Amount    `json:"position_size"`
	Outcome      Outcome   `json:"outcome"`
	Strategy     string    `json:"strategy,omitempty"`
	Platform     string    `json:"platform,omitempty"`
}

// Trade is a normalized, completed trade
type Trade struct {
	ID           string
	Timestamp    time.Time
	PnL          decimal.Decimal
	PositionSize decimal.Decimal
	Won          bool
	Strategy     string
	Platform     string
}

// Status distinguishes a computed result from the insufficient-data state
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
)

// Result is the engine output.
// Metrics is nil when Status is StatusInsufficientData.
type Result struct {
	Status  Status   `json:"status"`
	Metrics *Metrics `json:"metrics,omitempty"`
}

// Sufficient reports whether metrics were computed
func (r Result) Sufficient() bool {
	return r.Status == StatusOK && r.Metrics != nil
}

// EquityPoint is the account state after one trade
type EquityPoint struct {
	Date        time.Time       `json:"date"`
	Balance     decimal.Decimal `json:"balance"`
	Peak        decimal.Decimal `json:"peak"`
	Drawdown    decimal.Decimal `json:"drawdown"`
	DrawdownPct float64         `json:"drawdown_pct"`
}

// Ratio is a float that may legitimately be +Inf (profit factor with no losses).
// JSON has no infinity literal, so it is written as the string "Infinity".
type Ratio float64

// MarshalJSON implements json.Marshaler
func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(f):
		return []byte("0"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts numbers and the infinity strings written by MarshalJSON
func (r *Ratio) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "Infinity":
			*r = Ratio(math.Inf(1))
		case "-Infinity":
			*r = Ratio(math.Inf(-1))
		default:
			*r = 0
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

// Drawdown summarises peak-to-trough declines
type Drawdown struct {
	Max             decimal.Decimal `json:"max"`
	MaxPct          float64         `json:"max_pct"`
	MaxDurationDays int             `json:"max_duration_days"`
	Current         decimal.Decimal `json:"current"`
	CurrentPct      float64         `json:"current_pct"`
	CurrentDays     int             `json:"current_duration_days"`
}

// RiskMetrics holds ratio and payoff statistics
type RiskMetrics struct {
	Sharpe           float64 `json:"sharpe"`
	Sortino          float64 `json:"sortino"`
	Calmar           float64 `json:"calmar"`
	Volatility       float64 `json:"volatility"`
	AnnualizedReturn float64 `json:"annualized_return"`

	TotalTrades  int             `json:"total_trades"`
	Wins         int             `json:"wins"`
	Losses       int             `json:"losses"`
	WinRate      float64         `json:"win_rate"`
	AvgWin       float64         `json:"avg_win"`
	AvgLoss      float64         `json:"avg_loss"`
	Expectancy   float64         `json:"expectancy"`
	ProfitFactor Ratio           `json:"profit_factor"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	GrossLoss    decimal.Decimal `json:"gross_loss"`
	LargestWin   decimal.Decimal `json:"largest_win"`
	LargestLoss  decimal.Decimal `json:"largest_loss"`

	Kelly      float64 `json:"kelly"`
	RiskOfRuin float64 `json:"risk_of_ruin"`
}

// Streaks holds win/loss run lengths
type Streaks struct {
	MaxConsecutiveWins   int  `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int  `json:"max_consecutive_losses"`
	Current              int  `json:"current"`
	CurrentIsWin         bool `json:"current_is_win"`
}

// DayBucket aggregates trades closed on one weekday
type DayBucket struct {
	Day     time.Weekday    `json:"day"`
	Name    string          `json:"name"`
	PnL     decimal.Decimal `json:"pnl"`
	Trades  int             `json:"trades"`
	Wins    int             `json:"wins"`
	WinRate float64         `json:"win_rate"`
}

// HourBucket aggregates trades closed within one hour of the day
type HourBucket struct {
	Hour    int             `json:"hour"`
	PnL     decimal.Decimal `json:"pnl"`
	Trades  int             `json:"trades"`
	Wins    int             `json:"wins"`
	WinRate float64         `json:"win_rate"`
}

// MonthBucket aggregates trades closed within one calendar month
type MonthBucket struct {
	Month     string          `json:"month"` // YYYY-MM
	PnL       decimal.Decimal `json:"pnl"`
	ReturnPct float64         `json:"return_pct"`
	Trades    int             `json:"trades"`
}

// RMultiples normalises outcomes against the estimated risk unit
type RMultiples struct {
	AvgPositionSize float64   `json:"avg_position_size"`
	RiskUnit        float64   `json:"risk_unit"`
	Mean            float64   `json:"mean"`
	Total           float64   `json:"total"`
	PerTrade        []float64 `json:"per_trade"`
}

// LabelBucket aggregates trades sharing a strategy or platform label
type LabelBucket struct {
	Label   string          `json:"label"`
	PnL     decimal.Decimal `json:"pnl"`
	Trades  int             `json:"trades"`
	Wins    int             `json:"wins"`
	WinRate float64         `json:"win_rate"`
}

// Metrics is the full analytics result.
// It is built once per Compute call and never mutated afterwards.
type Metrics struct {
	StartingBalance decimal.Decimal `json:"starting_balance"`
	FinalBalance    decimal.Decimal `json:"final_balance"`
	TotalPnL        decimal.Decimal `json:"total_pnl"`
	NetReturnPct    float64         `json:"net_return_pct"`
	Timezone        string          `json:"timezone"`

	Equity      []EquityPoint `json:"equity"`
	Returns     []float64     `json:"returns"`
	DailyReturn bool          `json:"daily_returns"` // false when the per-trade fallback was used
	Drawdown    Drawdown      `json:"drawdown"`

	Risk    RiskMetrics `json:"risk"`
	Streaks Streaks     `json:"streaks"`

	ByDay   []DayBucket   `json:"by_day"`
	ByHour  []HourBucket  `json:"by_hour"`
	ByMonth []MonthBucket `json:"by_month"`

	RMultiples RMultiples `json:"r_multiples"`

	ByStrategy []LabelBucket `json:"by_strategy"`
	ByPlatform []LabelBucket `json:"by_platform"`
}
