package trades

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradedash/internal/analytics"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"array", `[{"id":"a","timestamp":"2024-01-02T10:00:00Z","realized_pnl":5,"outcome":"won"}]`, 1},
		{"wrapped", `{"trades":[{"id":"a"},{"id":"b"}]}`, 2},
		{"empty input", "  ", 0},
		{"wrapped without trades", `{"count":0}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			assert.NotNil(t, got)
		})
	}
}

func TestDecodeLenientAmounts(t *testing.T) {
	input := `[
		{"id":"a","timestamp":"2024-01-02T10:00:00Z","realized_pnl":"12.5","position_size":"n/a","outcome":"won"},
		{"id":"b","timestamp":"2024-01-02T11:00:00Z","realized_pnl":null,"outcome":"mystery"}
	]`

	got, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 12.5, got[0].RealizedPnL.Float())
	assert.False(t, got[0].PositionSize.Valid)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), got[0].Timestamp)
	assert.Equal(t, analytics.OutcomeWon, got[0].Outcome)

	assert.False(t, got[1].RealizedPnL.Valid)
	assert.False(t, got[1].Outcome.Completed())
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"id":`))
	assert.Error(t, err)
}
