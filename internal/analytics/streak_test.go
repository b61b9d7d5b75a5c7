package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateStreaks(t *testing.T) {
	tests := []struct {
		name    string
		pattern string // W / L in chronological order
		want    Streaks
	}{
		{"empty", "", Streaks{}},
		{"single win", "W", Streaks{MaxConsecutiveWins: 1, Current: 1, CurrentIsWin: true}},
		{"alternating", "WLWL", Streaks{MaxConsecutiveWins: 1, MaxConsecutiveLosses: 1, Current: 1}},
		{"runs", "WWWLLWLLLLW", Streaks{MaxConsecutiveWins: 3, MaxConsecutiveLosses: 4, Current: 1, CurrentIsWin: true}},
		{"ends on losses", "WWLLL", Streaks{MaxConsecutiveWins: 2, MaxConsecutiveLosses: 3, Current: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades := make([]Trade, len(tt.pattern))
			for i, c := range tt.pattern {
				trades[i] = Trade{Won: c == 'W'}
			}
			assert.Equal(t, tt.want, calculateStreaks(trades))
		})
	}
}
