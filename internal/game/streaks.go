package game

// recordWin and recordLoss keep win/lose streaks mutually exclusive. They must
// run in strict chronological match order; the coin bonus for the same match
// reads the post-increment value.
func (p *PlayerState) recordWin() {
	p.WinStreak++
	p.LoseStreak = 0
}

func (p *PlayerState) recordLoss() {
	p.LoseStreak++
	p.WinStreak = 0
}

// winStreakBonus: 2->+2, 3->+4, 4->+8, 5->+16, 6->+32, then a flat +100 for
// the 7th and every further consecutive win.
func winStreakBonus(streak int) int {
	switch {
	case streak == 2:
		return 2
	case streak == 3:
		return 4
	case streak == 4:
		return 8
	case streak == 5:
		return 16
	case streak == 6:
		return 32
	case streak >= 7:
		return 100
	}
	return 0
}

// loseStreakBonus: +2/+4/+6 at exactly 2/4/6 consecutive losses, then a flat
// +6 for every loss past 6 until a win resets the streak.
func loseStreakBonus(streak int) int {
	switch {
	case streak == 2:
		return 2
	case streak == 4:
		return 4
	case streak >= 6:
		return 6
	}
	return 0
}

// streakMaxima folds a chronological win/loss sequence into current and
// historical streak counters.
func streakMaxima(results []bool) StreakSummary {
	var out StreakSummary
	for _, won := range results {
		if won {
			out.CurrentWin++
			out.CurrentLose = 0
			if out.CurrentWin > out.MaxWin {
				out.MaxWin = out.CurrentWin
			}
		} else {
			out.CurrentLose++
			out.CurrentWin = 0
			if out.CurrentLose > out.MaxLose {
				out.MaxLose = out.CurrentLose
			}
		}
	}
	return out
}
