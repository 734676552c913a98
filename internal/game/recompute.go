package game

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
)

// RecomputeAll rebuilds every derived player field from scratch: reset to
// defaults, replay all finalized matches in ascending (created_at, id) order
// through the exact live pipeline, then net out the recorded purchases. The
// whole pass runs in one Serializable transaction, so a failure leaves the
// previous state untouched and two back-to-back runs land on identical state.
//
// Match events are a live-application journal and are not re-emitted here.
func (s *Service) RecomputeAll(ctx context.Context) (RecomputeSummary, error) {
	var out RecomputeSummary
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		out = RecomputeSummary{}

		state, err := resetAllPlayers(ctx, tx, s.settings.InitialRating)
		if err != nil {
			return err
		}

		matches, err := loadFinalizedMatches(ctx, tx)
		if err != nil {
			return err
		}
		for _, in := range matches {
			if _, err := s.engine.Score(state, in); err != nil {
				return err
			}
		}

		// History replayed here counts as scored; without this a match
		// finalized by older tooling could be applied twice.
		if _, err := tx.Exec(ctx, `
			UPDATE game.matches SET scored_at = COALESCE(scored_at, now())
			WHERE outcome IS NOT NULL
		`); err != nil {
			return err
		}

		spent, err := loadSpendTotals(ctx, tx)
		if err != nil {
			return err
		}
		for id, total := range spent {
			if p := state[id]; p != nil {
				p.CoinBalance -= total
			}
		}

		if err := persistPlayerStates(ctx, tx, state); err != nil {
			return err
		}

		out.MatchesProcessed = len(matches)
		out.PlayersAffected = len(state)
		out.PurchasesNetted = len(spent)
		return nil
	})
	if err != nil {
		return RecomputeSummary{}, err
	}
	s.log.Info("recompute complete",
		"matches", out.MatchesProcessed,
		"players", out.PlayersAffected,
		"purchases", out.PurchasesNetted)
	return out, nil
}

// resetAllPlayers loads every player row and returns fresh in-memory state
// with each derived field at its default.
func resetAllPlayers(ctx context.Context, tx pgx.Tx, initialRating int) (map[int64]*PlayerState, error) {
	rows, err := tx.Query(ctx, `SELECT id FROM game.players ORDER BY id FOR UPDATE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	state := make(map[int64]*PlayerState)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		state[id] = &PlayerState{ID: id, Rating: initialRating}
	}
	return state, rows.Err()
}

// loadFinalizedMatches returns scorable history in replay order. Equal
// timestamps fall back to ascending match id so streaks stay reproducible.
func loadFinalizedMatches(ctx context.Context, tx pgx.Tx) ([]MatchInput, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, created_at, outcome, infiltrator_id, killer_id
		FROM game.matches
		WHERE outcome IS NOT NULL
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []MatchInput
	byID := make(map[int64]*MatchInput)
	for rows.Next() {
		var in MatchInput
		var outcome *string
		var infiltratorID, killerID *int64
		if err := rows.Scan(&in.MatchID, &in.CreatedAt, &outcome, &infiltratorID, &killerID); err != nil {
			return nil, err
		}
		if outcome != nil {
			in.Outcome = Outcome(*outcome)
		}
		if infiltratorID != nil {
			in.Infiltrator = *infiltratorID
		}
		if killerID != nil {
			in.Killer = *killerID
		}
		matches = append(matches, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range matches {
		byID[matches[i].MatchID] = &matches[i]
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.MatchID)
	}
	pRows, err := tx.Query(ctx, `
		SELECT match_id, player_id, team
		FROM game.match_participants
		WHERE match_id = ANY($1)
		ORDER BY match_id, player_id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer pRows.Close()
	for pRows.Next() {
		var matchID, playerID int64
		var team string
		if err := pRows.Scan(&matchID, &playerID, &team); err != nil {
			return nil, err
		}
		m := byID[matchID]
		if m == nil {
			continue
		}
		if Side(team) == SideBlue {
			m.Blue = append(m.Blue, playerID)
		} else {
			m.Red = append(m.Red, playerID)
		}
	}
	if err := pRows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].MatchID < matches[j].MatchID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func loadSpendTotals(ctx context.Context, tx pgx.Tx) (map[int64]int, error) {
	rows, err := tx.Query(ctx, `
		SELECT player_id, COALESCE(SUM(cost), 0)
		FROM game.purchases
		GROUP BY player_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var id int64
		var total int
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		out[id] = total
	}
	return out, rows.Err()
}
