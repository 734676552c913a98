package game

import (
	"fmt"
	"time"
)

// PlayerState is the in-memory image of one player's derived ledger fields.
// The engine mutates these; persistence is the service's job.
type PlayerState struct {
	ID                int64
	Rating            int
	BlueWins          int
	RedWins           int
	InfiltratorWins   int
	SocialBlue        int
	SocialRed         int
	SocialInfiltrator int
	KillerPoints      int
	CoinBalance       int
	WinStreak         int
	LoseStreak        int
}

// MatchInput is one finalized match as the engine sees it: raw rosters, the
// designated infiltrator (who may or may not also hold a red roster slot),
// the optional killer and the recorded outcome.
type MatchInput struct {
	MatchID     int64
	Blue        []int64
	Red         []int64
	Infiltrator int64
	Killer      int64
	Outcome     Outcome
	CreatedAt   time.Time
}

// MatchEvent is one append-only journal record per participant per scored
// match, consumed by the out-of-process daily-stats feature.
type MatchEvent struct {
	MatchID     int64
	PlayerID    int64
	Side        Side
	RatingDelta int
	SocialGain  int
	OpponentAvg float64
}

// ScoreSummary reports what one Score call did.
type ScoreSummary struct {
	Winner    Side
	AvgBlue   float64
	AvgRed    float64
	DeltaBlue int
	DeltaRed  int
	Events    []MatchEvent
}

// Engine applies the deterministic scoring rules for one finalized match to
// in-memory player state. Live application and full recompute both run every
// match through Score, so the two cannot drift apart.
type Engine struct {
	Policy  RatingPolicy
	MaxBlue int
}

// Score runs the full per-match pipeline: roster validation, rating deltas,
// achievement grants, streak transitions and coin grants. Matches must be fed
// in ascending (created_at, id) order or streak math is undefined.
func (e Engine) Score(state map[int64]*PlayerState, in MatchInput) (ScoreSummary, error) {
	var out ScoreSummary

	if in.Outcome == "" {
		return out, ErrIncompleteMatch
	}
	if in.Outcome.RequiresKiller() && in.Killer == 0 {
		return out, fmt.Errorf("%w: outcome %s needs a recorded killer", ErrIncompleteMatch, in.Outcome)
	}
	if ok, reason := ValidateRosters(in.Blue, in.Red, in.Infiltrator, e.MaxBlue); !ok {
		return out, fmt.Errorf("%w: %s", ErrRosterInvalid, reason)
	}

	extRed := extendedRed(in.Red, in.Infiltrator)
	for _, id := range matchParticipants(in.Blue, extRed) {
		if state[id] == nil {
			return out, fmt.Errorf("player %d missing from loaded state", id)
		}
	}

	out.AvgBlue = teamAvg(stateRatings(state, in.Blue))
	out.AvgRed = teamAvg(stateRatings(state, extRed))
	out.Winner = in.Outcome.Winner()
	out.DeltaBlue, out.DeltaRed = ratingDelta(e.Policy, out.AvgBlue, out.AvgRed, out.Winner)

	for _, id := range in.Blue {
		state[id].Rating += out.DeltaBlue
	}
	for _, id := range extRed {
		state[id].Rating += out.DeltaRed
	}

	grants := socialGrants(in.Outcome, in.Blue, extRed, in.Infiltrator, in.Killer)
	for id, g := range grants {
		p := state[id]
		p.SocialBlue += g.SocialBlue
		p.SocialRed += g.SocialRed
		p.SocialInfiltrator += g.SocialInfiltrator
		p.KillerPoints += g.KillerPoints
	}

	winners, losers := in.Blue, extRed
	if out.Winner == SideRed {
		winners, losers = extRed, in.Blue
	}

	// Participation, role and kill bonuses land regardless of outcome.
	for _, id := range matchParticipants(in.Blue, extRed) {
		state[id].CoinBalance++
	}
	state[in.Infiltrator].CoinBalance += 3
	if in.Killer != 0 {
		if state[in.Killer] == nil {
			return out, fmt.Errorf("killer %d missing from loaded state", in.Killer)
		}
		state[in.Killer].CoinBalance += 5
	}

	for _, id := range winners {
		p := state[id]
		p.CoinBalance++
		p.recordWin()
		p.CoinBalance += winStreakBonus(p.WinStreak)
	}
	for _, id := range losers {
		p := state[id]
		p.recordLoss()
		p.CoinBalance += loseStreakBonus(p.LoseStreak)
	}

	if out.Winner == SideBlue {
		for _, id := range in.Blue {
			state[id].BlueWins++
		}
	} else {
		for _, id := range extRed {
			state[id].RedWins++
		}
		state[in.Infiltrator].InfiltratorWins++
	}

	out.Events = buildEvents(in, extRed, grants, out)
	return out, nil
}

func buildEvents(in MatchInput, extRed []int64, grants map[int64]socialGrant, sum ScoreSummary) []MatchEvent {
	events := make([]MatchEvent, 0, len(in.Blue)+len(extRed))
	for _, id := range in.Blue {
		events = append(events, MatchEvent{
			MatchID:     in.MatchID,
			PlayerID:    id,
			Side:        SideBlue,
			RatingDelta: sum.DeltaBlue,
			SocialGain:  grants[id].total(),
			OpponentAvg: sum.AvgRed,
		})
	}
	for _, id := range extRed {
		side := SideRed
		if id == in.Infiltrator {
			side = SideInfiltrator
		}
		events = append(events, MatchEvent{
			MatchID:     in.MatchID,
			PlayerID:    id,
			Side:        side,
			RatingDelta: sum.DeltaRed,
			SocialGain:  grants[id].total(),
			OpponentAvg: sum.AvgBlue,
		})
	}
	return events
}

func stateRatings(state map[int64]*PlayerState, ids []int64) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		out = append(out, state[id].Rating)
	}
	return out
}

// Favorite is the nominally stronger side going into the match; blue on exact
// ties, mirroring the rating curves.
func Favorite(avgBlue, avgRed float64) Side {
	if avgBlue >= avgRed {
		return SideBlue
	}
	return SideRed
}
