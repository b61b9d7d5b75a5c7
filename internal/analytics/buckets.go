package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Calendar buckets
// 요일 버킷은 항상 7개, 시간 버킷은 거래가 있는 시간만 반환

func winRate(wins, trades int) float64 {
	if trades == 0 {
		return 0
	}
	return float64(wins) / float64(trades) * 100
}

// aggregateByDay returns seven buckets, Sunday first, even when empty
func aggregateByDay(trades []Trade, loc *time.Location) []DayBucket {
	buckets := make([]DayBucket, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		buckets[d] = DayBucket{Day: d, Name: d.String(), PnL: decimal.Zero}
	}

	for _, t := range trades {
		b := &buckets[t.Timestamp.In(loc).Weekday()]
		b.PnL = b.PnL.Add(t.PnL)
		b.Trades++
		if t.Won {
			b.Wins++
		}
	}

	for i := range buckets {
		buckets[i].WinRate = winRate(buckets[i].Wins, buckets[i].Trades)
	}
	return buckets
}

// aggregateByHour returns only the hours that saw at least one trade
func aggregateByHour(trades []Trade, loc *time.Location) []HourBucket {
	byHour := make(map[int]*HourBucket)

	for _, t := range trades {
		h := t.Timestamp.In(loc).Hour()
		b, ok := byHour[h]
		if !ok {
			b = &HourBucket{Hour: h, PnL: decimal.Zero}
			byHour[h] = b
		}
		b.PnL = b.PnL.Add(t.PnL)
		b.Trades++
		if t.Won {
			b.Wins++
		}
	}

	buckets := make([]HourBucket, 0, len(byHour))
	for _, b := range byHour {
		b.WinRate = winRate(b.Wins, b.Trades)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Hour < buckets[j].Hour
	})
	return buckets
}

// aggregateByMonth groups by calendar year-month in chronological order
func aggregateByMonth(trades []Trade, startingBalance decimal.Decimal, loc *time.Location) []MonthBucket {
	byMonth := make(map[string]*MonthBucket)

	for _, t := range trades {
		key := t.Timestamp.In(loc).Format("2006-01")
		b, ok := byMonth[key]
		if !ok {
			b = &MonthBucket{Month: key, PnL: decimal.Zero}
			byMonth[key] = b
		}
		b.PnL = b.PnL.Add(t.PnL)
		b.Trades++
	}

	buckets := make([]MonthBucket, 0, len(byMonth))
	for _, b := range byMonth {
		if startingBalance.IsPositive() {
			b.ReturnPct = finite(b.PnL.Div(startingBalance).Mul(hundred).InexactFloat64())
		}
		buckets = append(buckets, *b)
	}
	// YYYY-MM sorts lexically
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}

// UnlabeledKey groups trades without a strategy or platform label
const UnlabeledKey = "unlabeled"

// aggregateByLabel groups trades by the label returned from key, largest P&L first
func aggregateByLabel(trades []Trade, key func(Trade) string) []LabelBucket {
	byLabel := make(map[string]*LabelBucket)

	for _, t := range trades {
		label := key(t)
		if label == "" {
			label = UnlabeledKey
		}
		b, ok := byLabel[label]
		if !ok {
			b = &LabelBucket{Label: label, PnL: decimal.Zero}
			byLabel[label] = b
		}
		b.PnL = b.PnL.Add(t.PnL)
		b.Trades++
		if t.Won {
			b.Wins++
		}
	}

	buckets := make([]LabelBucket, 0, len(byLabel))
	for _, b := range byLabel {
		b.WinRate = winRate(b.Wins, b.Trades)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if !buckets[i].PnL.Equal(buckets[j].PnL) {
			return buckets[i].PnL.GreaterThan(buckets[j].PnL)
		}
		return buckets[i].Label < buckets[j].Label
	})
	return buckets
}
