package game

import "testing"

func TestWinStreakBonus(t *testing.T) {
	want := map[int]int{1: 0, 2: 2, 3: 4, 4: 8, 5: 16, 6: 32, 7: 100, 8: 100, 12: 100}
	for streak, bonus := range want {
		if got := winStreakBonus(streak); got != bonus {
			t.Fatalf("streak %d: got %d, want %d", streak, got, bonus)
		}
	}
}

func TestLoseStreakBonus(t *testing.T) {
	want := map[int]int{1: 0, 2: 2, 3: 0, 4: 4, 5: 0, 6: 6, 7: 6, 8: 6, 15: 6}
	for streak, bonus := range want {
		if got := loseStreakBonus(streak); got != bonus {
			t.Fatalf("streak %d: got %d, want %d", streak, got, bonus)
		}
	}
}

func TestStreakTransitionsAreMutuallyExclusive(t *testing.T) {
	p := &PlayerState{}
	p.recordWin()
	p.recordWin()
	if p.WinStreak != 2 || p.LoseStreak != 0 {
		t.Fatalf("after two wins: win=%d lose=%d", p.WinStreak, p.LoseStreak)
	}
	p.recordLoss()
	if p.WinStreak != 0 || p.LoseStreak != 1 {
		t.Fatalf("loss must reset win streak: win=%d lose=%d", p.WinStreak, p.LoseStreak)
	}
	p.recordWin()
	if p.WinStreak != 1 || p.LoseStreak != 0 {
		t.Fatalf("win must reset lose streak: win=%d lose=%d", p.WinStreak, p.LoseStreak)
	}
}

func TestStreakMaxima(t *testing.T) {
	// W W L L L W W W W L
	results := []bool{true, true, false, false, false, true, true, true, true, false}
	got := streakMaxima(results)
	want := StreakSummary{CurrentWin: 0, CurrentLose: 1, MaxWin: 4, MaxLose: 3}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if got := streakMaxima(nil); got != (StreakSummary{}) {
		t.Fatalf("no history must be all zeros, got %+v", got)
	}
}
