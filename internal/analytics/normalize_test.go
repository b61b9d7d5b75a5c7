package analytics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	records := []TradeRecord{
		rec("c", day0.Add(2*time.Hour), 30, OutcomeWon),
		rec("open", day0, 99, OutcomePending),
		rec("a", day0, -10, OutcomeLost),
		rec("failed", day0, 99, OutcomeFailed),
		rec("b", day0, 20, OutcomeWon), // same timestamp as "a": keeps input order
		rec("junk", day0, 99, Outcome("???")),
		{ID: "nan", Timestamp: day0.Add(time.Hour), RealizedPnL: Amount{Value: math.NaN(), Valid: true}, PositionSize: NewAmount(-50), Outcome: OutcomeLost},
	}

	trades := Normalize(records)
	require.Len(t, trades, 4)

	ids := make([]string, len(trades))
	for i, tr := range trades {
		ids[i] = tr.ID
	}
	assert.Equal(t, []string{"a", "b", "nan", "c"}, ids)

	assert.True(t, trades[2].PnL.IsZero(), "NaN coerced to 0")
	assert.True(t, trades[2].PositionSize.IsZero(), "negative size clamped")
	assert.False(t, trades[2].Won)
	assert.True(t, trades[1].Won)
}

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		in   string
		want Outcome
		ok   bool
	}{
		{"won", OutcomeWon, true},
		{"WIN", OutcomeWon, true},
		{" lost ", OutcomeLost, true},
		{"loss", OutcomeLost, true},
		{"open", OutcomePending, true},
		{"failed_execution", OutcomeFailed, true},
		{"cancelled", Outcome("cancelled"), false},
		{"", Outcome(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseOutcome(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}

	assert.True(t, OutcomeWon.Completed())
	assert.True(t, OutcomeLost.Completed())
	assert.False(t, OutcomePending.Completed())
	assert.False(t, Outcome("cancelled").Completed())
}

func TestTradeRecordJSON(t *testing.T) {
	tests := []struct {
		name      string
		pnl       string
		wantValid bool
		want      float64
	}{
		{"number", `12.5`, true, 12.5},
		{"negative", `-3`, true, -3},
		{"numeric string", `"42.10"`, true, 42.10},
		{"thousands separator", `"1,250.5"`, true, 1250.5},
		{"null", `null`, false, 0},
		{"garbage string", `"n/a"`, false, 0},
		{"object", `{"v":1}`, false, 0},
		{"bool", `true`, false, 0},
		{"nan string", `"NaN"`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r TradeRecord
			err := json.Unmarshal([]byte(`{"id":"x","realized_pnl":`+tt.pnl+`,"outcome":"Won"}`), &r)
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, r.RealizedPnL.Valid)
			assert.InDelta(t, tt.want, r.RealizedPnL.Float(), 1e-9)
			assert.Equal(t, OutcomeWon, r.Outcome)
		})
	}
}

func TestTradeRecordJSONMissingFields(t *testing.T) {
	var r TradeRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","outcome":42}`), &r))

	assert.False(t, r.RealizedPnL.Valid)
	assert.False(t, r.PositionSize.Valid)
	assert.False(t, r.Outcome.Completed())
}

func TestAmountMarshal(t *testing.T) {
	data, err := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{NewAmount(1.5), Amount{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(data))
}

func TestRatioJSON(t *testing.T) {
	tests := []struct {
		ratio Ratio
		json  string
	}{
		{Ratio(4), `4`},
		{Ratio(math.Inf(1)), `"Infinity"`},
		{Ratio(math.Inf(-1)), `"-Infinity"`},
		{Ratio(0), `0`},
	}

	for _, tt := range tests {
		t.Run(tt.json, func(t *testing.T) {
			data, err := json.Marshal(tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.json, string(data))

			var back Ratio
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.ratio, back)
		})
	}

	data, err := json.Marshal(Ratio(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}
