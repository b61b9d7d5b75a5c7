package analytics

// calculateStreaks finds the longest win and loss runs in chronological order
func calculateStreaks(trades []Trade) Streaks {
	var s Streaks

	for i, t := range trades {
		if i == 0 || t.Won != trades[i-1].Won {
			s.Current = 1
		} else {
			s.Current++
		}
		s.CurrentIsWin = t.Won

		if t.Won && s.Current > s.MaxConsecutiveWins {
			s.MaxConsecutiveWins = s.Current
		}
		if !t.Won && s.Current > s.MaxConsecutiveLosses {
			s.MaxConsecutiveLosses = s.Current
		}
	}

	return s
}
