package game

import (
	"errors"
	"reflect"
	"testing"
)

func testEngine() Engine {
	return Engine{Policy: PolicyDiscrete, MaxBlue: 6}
}

func testState(rating int, ids ...int64) map[int64]*PlayerState {
	state := make(map[int64]*PlayerState, len(ids))
	for _, id := range ids {
		state[id] = &PlayerState{ID: id, Rating: rating}
	}
	return state
}

func TestScoreEqualTeamsRedObjective(t *testing.T) {
	e := testEngine()
	state := testState(3000, 1, 2, 3, 4, 5)

	sum, err := e.Score(state, MatchInput{
		MatchID:     1,
		Blue:        []int64{1, 2},
		Red:         []int64{3, 4},
		Infiltrator: 5,
		Outcome:     OutcomeRedObjective,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if sum.Winner != SideRed {
		t.Fatalf("winner = %s, want red", sum.Winner)
	}
	if sum.DeltaBlue != -25 || sum.DeltaRed != 25 {
		t.Fatalf("deltas = %d/%d, want -25/+25 on equal averages", sum.DeltaBlue, sum.DeltaRed)
	}
	for _, id := range []int64{1, 2} {
		if state[id].Rating != 2975 {
			t.Fatalf("blue player %d rating = %d", id, state[id].Rating)
		}
	}
	for _, id := range []int64{3, 4, 5} {
		p := state[id]
		if p.Rating != 3025 {
			t.Fatalf("red player %d rating = %d", id, p.Rating)
		}
		if p.SocialRed != 1 || p.SocialInfiltrator != 0 {
			t.Fatalf("red player %d achievements: %+v", id, p)
		}
		if p.RedWins != 1 || p.WinStreak != 1 {
			t.Fatalf("red player %d win record: %+v", id, p)
		}
	}
	if state[5].InfiltratorWins != 1 {
		t.Fatalf("infiltrator wins = %d", state[5].InfiltratorWins)
	}
	// 1 participation + 3 role + 1 victory, no streak bonus at streak one.
	if state[5].CoinBalance != 5 {
		t.Fatalf("infiltrator coins = %d, want 5", state[5].CoinBalance)
	}
	for _, id := range []int64{3, 4} {
		if state[id].CoinBalance != 2 {
			t.Fatalf("red player %d coins = %d, want 2", id, state[id].CoinBalance)
		}
	}
	for _, id := range []int64{1, 2} {
		p := state[id]
		if p.CoinBalance != 1 || p.LoseStreak != 1 || p.BlueWins != 0 {
			t.Fatalf("blue player %d after loss: %+v", id, p)
		}
	}

	if len(sum.Events) != 5 {
		t.Fatalf("events = %d, want 5", len(sum.Events))
	}
	for _, ev := range sum.Events {
		switch ev.PlayerID {
		case 1, 2:
			if ev.Side != SideBlue || ev.RatingDelta != -25 || ev.OpponentAvg != 3000 {
				t.Fatalf("blue event: %+v", ev)
			}
		case 5:
			if ev.Side != SideInfiltrator || ev.RatingDelta != 25 {
				t.Fatalf("infiltrator event: %+v", ev)
			}
		default:
			if ev.Side != SideRed || ev.SocialGain != 1 {
				t.Fatalf("red event: %+v", ev)
			}
		}
	}
}

func TestScoreBlueKillGrantsKillerBonus(t *testing.T) {
	e := testEngine()
	state := testState(3000, 1, 2, 3, 4)

	_, err := e.Score(state, MatchInput{
		MatchID:     1,
		Blue:        []int64{1, 2},
		Red:         []int64{3},
		Infiltrator: 4,
		Killer:      2,
		Outcome:     OutcomeBlueKill,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	// 1 participation + 5 kill + 1 victory.
	if state[2].CoinBalance != 7 {
		t.Fatalf("killer coins = %d, want 7", state[2].CoinBalance)
	}
	if state[2].KillerPoints != 1 || state[2].SocialBlue != 1 {
		t.Fatalf("killer achievements: %+v", state[2])
	}
	if state[1].CoinBalance != 2 || state[1].BlueWins != 1 {
		t.Fatalf("bystander blue: %+v", state[1])
	}
}

func TestScoreWinStreakAccumulation(t *testing.T) {
	e := testEngine()
	state := testState(3000, 1, 2, 3)

	in := MatchInput{
		Blue:        []int64{1},
		Red:         []int64{2},
		Infiltrator: 3,
		Outcome:     OutcomeBlueObjective,
	}
	for i := 0; i < 7; i++ {
		in.MatchID = int64(i + 1)
		if _, err := e.Score(state, in); err != nil {
			t.Fatalf("match %d: %v", i+1, err)
		}
	}

	if state[1].WinStreak != 7 {
		t.Fatalf("win streak = %d, want 7", state[1].WinStreak)
	}
	// Per match: 1 participation + 1 victory; streak bonuses 0,2,4,8,16,32,100.
	if state[1].CoinBalance != 176 {
		t.Fatalf("coins = %d, want 176", state[1].CoinBalance)
	}
	if state[1].BlueWins != 7 || state[1].SocialBlue != 7 {
		t.Fatalf("winner record: %+v", state[1])
	}
}

func TestScoreLoseStreakBonuses(t *testing.T) {
	e := testEngine()
	state := testState(3000, 1, 2, 3)

	in := MatchInput{
		Blue:        []int64{1},
		Red:         []int64{2},
		Infiltrator: 3,
		Outcome:     OutcomeRedObjective,
	}
	for i := 0; i < 7; i++ {
		in.MatchID = int64(i + 1)
		if _, err := e.Score(state, in); err != nil {
			t.Fatalf("match %d: %v", i+1, err)
		}
	}

	if state[1].LoseStreak != 7 {
		t.Fatalf("lose streak = %d, want 7", state[1].LoseStreak)
	}
	// 7 participation plus consolation at losses 2, 4, 6 and 7 (2+4+6+6).
	if state[1].CoinBalance != 25 {
		t.Fatalf("coins = %d, want 25", state[1].CoinBalance)
	}
}

func TestScoreRejectsIncompleteMatches(t *testing.T) {
	e := testEngine()

	_, err := e.Score(testState(3000, 1, 2, 3), MatchInput{
		Blue:        []int64{1},
		Red:         []int64{2},
		Infiltrator: 3,
	})
	if !errors.Is(err, ErrIncompleteMatch) {
		t.Fatalf("missing outcome: %v", err)
	}

	_, err = e.Score(testState(3000, 1, 2, 3), MatchInput{
		Blue:        []int64{1},
		Red:         []int64{2},
		Infiltrator: 3,
		Outcome:     OutcomeBlueKill,
	})
	if !errors.Is(err, ErrIncompleteMatch) {
		t.Fatalf("kill outcome without killer: %v", err)
	}
}

func TestScoreRejectsInvalidRosters(t *testing.T) {
	e := testEngine()

	_, err := e.Score(testState(3000, 1, 2), MatchInput{
		Blue:        []int64{1},
		Red:         []int64{2},
		Infiltrator: 1,
		Outcome:     OutcomeBlueObjective,
	})
	if !errors.Is(err, ErrRosterInvalid) {
		t.Fatalf("infiltrator on blue: %v", err)
	}
}

func TestScoreReplayIsDeterministic(t *testing.T) {
	e := testEngine()

	history := []MatchInput{
		{MatchID: 1, Blue: []int64{1, 2}, Red: []int64{3}, Infiltrator: 4, Outcome: OutcomeBlueObjective},
		{MatchID: 2, Blue: []int64{1, 3}, Red: []int64{2}, Infiltrator: 4, Outcome: OutcomeRedInstall},
		{MatchID: 3, Blue: []int64{2, 4}, Red: []int64{1}, Infiltrator: 3, Killer: 2, Outcome: OutcomeBlueKill},
		{MatchID: 4, Blue: []int64{1, 2}, Red: []int64{4}, Infiltrator: 3, Outcome: OutcomeRedObjective},
	}

	replay := func() map[int64]*PlayerState {
		state := testState(3000, 1, 2, 3, 4)
		for _, in := range history {
			if _, err := e.Score(state, in); err != nil {
				t.Fatalf("match %d: %v", in.MatchID, err)
			}
		}
		return state
	}

	first, second := replay(), replay()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("replays diverged:\n%+v\n%+v", first, second)
	}
}

func TestScoreRedInstallRewardsInfiltrator(t *testing.T) {
	e := testEngine()
	state := testState(3000, 1, 2, 3)

	_, err := e.Score(state, MatchInput{
		MatchID:     1,
		Blue:        []int64{1},
		Red:         []int64{2},
		Infiltrator: 3,
		Outcome:     OutcomeRedInstall,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	p := state[3]
	if p.SocialRed != 1 || p.SocialInfiltrator != 1 {
		t.Fatalf("infiltrator achievements: %+v", p)
	}
	if p.CoinBalance != 5 {
		t.Fatalf("infiltrator coins = %d, want 5", p.CoinBalance)
	}
}
