package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings carries the implicit globals of the old system as explicit engine
// configuration.
type Settings struct {
	InitialRating int
	MaxBlue       int
	Policy        RatingPolicy
}

type Service struct {
	db       *pgxpool.Pool
	log      *slog.Logger
	settings Settings
	engine   Engine
}

func NewService(db *pgxpool.Pool, logger *slog.Logger, settings Settings) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.InitialRating == 0 {
		settings.InitialRating = 3000
	}
	if settings.MaxBlue == 0 {
		settings.MaxBlue = 6
	}
	if settings.Policy == "" {
		settings.Policy = PolicyDiscrete
	}
	return &Service{
		db:       db,
		log:      logger,
		settings: settings,
		engine:   Engine{Policy: settings.Policy, MaxBlue: settings.MaxBlue},
	}
}

func (s *Service) Settings() Settings { return s.settings }

const playerColumns = `id, first_name, last_name, username, rating,
	blue_wins, red_wins, infiltrator_wins,
	social_blue, social_red, social_infiltrator, killer_points,
	coin_balance, win_streak, lose_streak, created_at`

func scanPlayer(row pgx.Row) (Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Username, &p.Rating,
		&p.BlueWins, &p.RedWins, &p.InfiltratorWins,
		&p.SocialBlue, &p.SocialRed, &p.SocialInfiltrator, &p.KillerPoints,
		&p.CoinBalance, &p.WinStreak, &p.LoseStreak, &p.CreatedAt)
	return p, err
}

// ===== Players =====

func (s *Service) CreatePlayer(ctx context.Context, firstName, lastName, username string) (Player, error) {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return Player{}, fmt.Errorf("first name is required")
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO game.players (first_name, last_name, username, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING `+playerColumns+`
	`, firstName, strings.TrimSpace(lastName), strings.TrimSpace(strings.TrimPrefix(username, "@")), s.settings.InitialRating)
	return scanPlayer(row)
}

func (s *Service) RenamePlayer(ctx context.Context, id int64, firstName, lastName string) error {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return fmt.Errorf("first name is required")
	}
	cmd, err := s.db.Exec(ctx, `
		UPDATE game.players SET first_name = $2, last_name = $3 WHERE id = $1
	`, id, firstName, strings.TrimSpace(lastName))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (s *Service) GetPlayer(ctx context.Context, id int64) (Player, error) {
	p, err := scanPlayer(s.db.QueryRow(ctx, `
		SELECT `+playerColumns+` FROM game.players WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Player{}, ErrPlayerNotFound
	}
	return p, err
}

func (s *Service) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+playerColumns+` FROM game.players
		ORDER BY first_name, last_name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlayers(rows)
}

func (s *Service) SearchPlayers(ctx context.Context, query string) ([]Player, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	pattern := "%" + q + "%"
	rows, err := s.db.Query(ctx, `
		SELECT `+playerColumns+` FROM game.players
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR username ILIKE $1
		ORDER BY first_name, last_name, id
	`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlayers(rows)
}

// DeletePlayer removes a player who has never appeared in a match. Players
// with history must stay so replay keeps producing the same ledgers.
func (s *Service) DeletePlayer(ctx context.Context, id int64) error {
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		var n int
		err := tx.QueryRow(ctx, `
			SELECT count(1) FROM game.match_participants WHERE player_id = $1
		`, id).Scan(&n)
		if err != nil {
			return err
		}
		if n == 0 {
			err = tx.QueryRow(ctx, `
				SELECT count(1) FROM game.matches WHERE infiltrator_id = $1 OR killer_id = $1
			`, id).Scan(&n)
			if err != nil {
				return err
			}
		}
		if n > 0 {
			return ErrPlayerHasMatches
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM game.players WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrPlayerNotFound
		}
		return nil
	})
}

func collectPlayers(rows pgx.Rows) ([]Player, error) {
	var out []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ===== Matches =====

func (s *Service) CreateMatch(ctx context.Context, title string, createdBy int64) (Match, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Match " + time.Now().Format("02.01.2006 15:04")
	}
	var m Match
	err := s.db.QueryRow(ctx, `
		INSERT INTO game.matches (title, created_by)
		VALUES ($1, $2)
		RETURNING id, title, created_by, created_at
	`, title, createdBy).Scan(&m.ID, &m.Title, &m.CreatedBy, &m.CreatedAt)
	return m, err
}

func scanMatch(row pgx.Row) (Match, error) {
	var m Match
	var o *string
	var infiltratorID, killerID *int64
	err := row.Scan(&m.ID, &m.Title, &m.CreatedBy, &m.CreatedAt, &o, &infiltratorID, &killerID, &m.ScoredAt)
	if err != nil {
		return m, err
	}
	if o != nil {
		m.Outcome = Outcome(*o)
	}
	if infiltratorID != nil {
		m.InfiltratorID = *infiltratorID
	}
	if killerID != nil {
		m.KillerID = *killerID
	}
	return m, nil
}

const matchColumns = `id, title, created_by, created_at, outcome, infiltrator_id, killer_id, scored_at`

func (s *Service) GetMatch(ctx context.Context, id int64) (MatchDetail, error) {
	var out MatchDetail
	m, err := scanMatch(s.db.QueryRow(ctx, `
		SELECT `+matchColumns+` FROM game.matches WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return out, ErrMatchNotFound
	}
	if err != nil {
		return out, err
	}
	out.Match = m

	rows, err := s.db.Query(ctx, `
		SELECT mp.team, `+prefixColumns("p", playerColumns)+`
		FROM game.match_participants mp
		JOIN game.players p ON p.id = mp.player_id
		WHERE mp.match_id = $1
		ORDER BY p.first_name, p.last_name, p.id
	`, id)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var team string
		var p Player
		if err := rows.Scan(&team, &p.ID, &p.FirstName, &p.LastName, &p.Username, &p.Rating,
			&p.BlueWins, &p.RedWins, &p.InfiltratorWins,
			&p.SocialBlue, &p.SocialRed, &p.SocialInfiltrator, &p.KillerPoints,
			&p.CoinBalance, &p.WinStreak, &p.LoseStreak, &p.CreatedAt); err != nil {
			return out, err
		}
		if Side(team) == SideBlue {
			out.Blue = append(out.Blue, p)
		} else {
			out.Red = append(out.Red, p)
		}
	}
	return out, rows.Err()
}

func (s *Service) ListMatches(ctx context.Context) ([]Match, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+matchColumns+` FROM game.matches
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetRoster replaces one team's roster wholesale. A player already rostered on
// the other team is moved, keeping the one-tag-per-match invariant.
func (s *Service) SetRoster(ctx context.Context, matchID int64, team Side, playerIDs []int64) error {
	if team != SideBlue && team != SideRed {
		return fmt.Errorf("roster edits take team %q or %q", SideBlue, SideRed)
	}
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := lockUnscored(ctx, tx, matchID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM game.match_participants
			WHERE match_id = $1 AND (team = $2 OR player_id = ANY($3))
		`, matchID, string(team), playerIDs); err != nil {
			return err
		}
		for _, pid := range playerIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO game.match_participants (match_id, player_id, team)
				VALUES ($1, $2, $3)
			`, matchID, pid, string(team)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) SetInfiltrator(ctx context.Context, matchID, playerID int64) error {
	return s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := lockUnscored(ctx, tx, matchID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE game.matches SET infiltrator_id = NULLIF($2, 0) WHERE id = $1
		`, matchID, playerID)
		return err
	})
}

// DeleteMatch drops the match and its participations. Derived player state is
// not unwound incrementally; callers are expected to run RecomputeAll next.
func (s *Service) DeleteMatch(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, `DELETE FROM game.matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	s.log.Info("match deleted, derived state is stale until recompute", "match_id", id)
	return nil
}

// lockUnscored row-locks a match that is still mutable.
func lockUnscored(ctx context.Context, tx pgx.Tx, matchID int64) error {
	var scoredAt *time.Time
	err := tx.QueryRow(ctx, `
		SELECT scored_at FROM game.matches WHERE id = $1 FOR UPDATE
	`, matchID).Scan(&scoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMatchNotFound
	}
	if err != nil {
		return err
	}
	if scoredAt != nil {
		return ErrAlreadyScored
	}
	return nil
}

// ===== Scoring =====

// FinalizeMatch records the outcome (and killer, when the outcome demands one)
// and scores the match, all in one transaction. Once it commits the match is
// immutable history.
func (s *Service) FinalizeMatch(ctx context.Context, matchID int64, outcome Outcome, killerID int64) (ApplyResult, error) {
	if outcome.RequiresKiller() && killerID == 0 {
		return ApplyResult{}, fmt.Errorf("%w: outcome %s needs a recorded killer", ErrIncompleteMatch, outcome)
	}
	var out ApplyResult
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := lockUnscored(ctx, tx, matchID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game.matches SET outcome = $2, killer_id = NULLIF($3, 0) WHERE id = $1
		`, matchID, string(outcome), killerID); err != nil {
			return err
		}
		var err error
		out, err = s.scoreMatchTx(ctx, tx, matchID)
		return err
	})
	if err != nil {
		return ApplyResult{}, err
	}
	s.log.Info("match finalized",
		"match_id", matchID, "outcome", out.Outcome, "winner", out.Winner,
		"delta_blue", out.DeltaBlue, "delta_red", out.DeltaRed)
	return out, nil
}

// ApplyMatch scores a match whose outcome was already recorded but which has
// not been scored yet. Rescoring is rejected; RecomputeAll is the only
// sanctioned way to reprocess history.
func (s *Service) ApplyMatch(ctx context.Context, matchID int64) (ApplyResult, error) {
	var out ApplyResult
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := lockUnscored(ctx, tx, matchID); err != nil {
			return err
		}
		var err error
		out, err = s.scoreMatchTx(ctx, tx, matchID)
		return err
	})
	if err != nil {
		return ApplyResult{}, err
	}
	s.log.Info("match scored",
		"match_id", matchID, "outcome", out.Outcome, "winner", out.Winner,
		"delta_blue", out.DeltaBlue, "delta_red", out.DeltaRed)
	return out, nil
}

// scoreMatchTx runs the engine against the match inside the caller's
// transaction: load rosters and players, mutate in memory, persist every
// touched row, flip the scored flag and append the journal. All of it commits
// or none of it does.
func (s *Service) scoreMatchTx(ctx context.Context, tx pgx.Tx, matchID int64) (ApplyResult, error) {
	var out ApplyResult

	in, err := loadMatchInput(ctx, tx, matchID)
	if err != nil {
		return out, err
	}
	if in.Outcome == "" {
		return out, ErrIncompleteMatch
	}

	ids := matchParticipants(in.Blue, extendedRed(in.Red, in.Infiltrator))
	if in.Killer != 0 && !containsID(ids, in.Killer) {
		ids = append(ids, in.Killer)
	}
	state, err := loadPlayerStates(ctx, tx, ids)
	if err != nil {
		return out, err
	}

	sum, err := s.engine.Score(state, in)
	if err != nil {
		return out, err
	}

	// The scored flag is claimed by rows-affected in the same transaction as
	// the ledger writes; a second finalization attempt sees zero rows.
	cmd, err := tx.Exec(ctx, `
		UPDATE game.matches SET scored_at = now() WHERE id = $1 AND scored_at IS NULL
	`, matchID)
	if err != nil {
		return out, err
	}
	if cmd.RowsAffected() == 0 {
		return out, ErrAlreadyScored
	}

	if err := persistPlayerStates(ctx, tx, state); err != nil {
		return out, err
	}
	if err := appendMatchEvents(ctx, tx, sum.Events); err != nil {
		return out, err
	}

	return ApplyResult{
		MatchID:   matchID,
		Outcome:   in.Outcome,
		Winner:    sum.Winner,
		Favorite:  Favorite(sum.AvgBlue, sum.AvgRed),
		AvgBlue:   sum.AvgBlue,
		AvgRed:    sum.AvgRed,
		DeltaBlue: sum.DeltaBlue,
		DeltaRed:  sum.DeltaRed,
	}, nil
}

func loadMatchInput(ctx context.Context, tx pgx.Tx, matchID int64) (MatchInput, error) {
	var in MatchInput
	var outcome *string
	var infiltratorID, killerID *int64
	err := tx.QueryRow(ctx, `
		SELECT id, created_at, outcome, infiltrator_id, killer_id
		FROM game.matches WHERE id = $1
	`, matchID).Scan(&in.MatchID, &in.CreatedAt, &outcome, &infiltratorID, &killerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return in, ErrMatchNotFound
	}
	if err != nil {
		return in, err
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

	rows, err := tx.Query(ctx, `
		SELECT player_id, team FROM game.match_participants
		WHERE match_id = $1
		ORDER BY player_id
	`, matchID)
	if err != nil {
		return in, err
	}
	defer rows.Close()
	for rows.Next() {
		var pid int64
		var team string
		if err := rows.Scan(&pid, &team); err != nil {
			return in, err
		}
		if Side(team) == SideBlue {
			in.Blue = append(in.Blue, pid)
		} else {
			in.Red = append(in.Red, pid)
		}
	}
	return in, rows.Err()
}

// loadPlayerStates row-locks the touched players in ascending id order so
// concurrent scorings of disjoint matches cannot deadlock.
func loadPlayerStates(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]*PlayerState, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rows, err := tx.Query(ctx, `
		SELECT id, rating, blue_wins, red_wins, infiltrator_wins,
		       social_blue, social_red, social_infiltrator, killer_points,
		       coin_balance, win_streak, lose_streak
		FROM game.players
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, sorted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	state := make(map[int64]*PlayerState, len(sorted))
	for rows.Next() {
		p := &PlayerState{}
		if err := rows.Scan(&p.ID, &p.Rating, &p.BlueWins, &p.RedWins, &p.InfiltratorWins,
			&p.SocialBlue, &p.SocialRed, &p.SocialInfiltrator, &p.KillerPoints,
			&p.CoinBalance, &p.WinStreak, &p.LoseStreak); err != nil {
			return nil, err
		}
		state[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if state[id] == nil {
			return nil, fmt.Errorf("%w: id %d", ErrPlayerNotFound, id)
		}
	}
	return state, nil
}

func persistPlayerStates(ctx context.Context, tx pgx.Tx, state map[int64]*PlayerState) error {
	ids := make([]int64, 0, len(state))
	for id := range state {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := state[id]
		if _, err := tx.Exec(ctx, `
			UPDATE game.players SET
				rating = $2,
				blue_wins = $3, red_wins = $4, infiltrator_wins = $5,
				social_blue = $6, social_red = $7, social_infiltrator = $8,
				killer_points = $9, coin_balance = $10,
				win_streak = $11, lose_streak = $12
			WHERE id = $1
		`, p.ID, p.Rating, p.BlueWins, p.RedWins, p.InfiltratorWins,
			p.SocialBlue, p.SocialRed, p.SocialInfiltrator,
			p.KillerPoints, p.CoinBalance, p.WinStreak, p.LoseStreak); err != nil {
			return err
		}
	}
	return nil
}

func appendMatchEvents(ctx context.Context, tx pgx.Tx, events []MatchEvent) error {
	for _, e := range events {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.match_events (match_id, player_id, side, rating_delta, social_gain, opponent_avg)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.MatchID, e.PlayerID, string(e.Side), e.RatingDelta, e.SocialGain, e.OpponentAvg); err != nil {
			return err
		}
	}
	return nil
}

// ===== Streaks =====

// PlayerStreaks scans the player's finalized matches in chronological order;
// the maxima are derived from history, never stored.
func (s *Service) PlayerStreaks(ctx context.Context, playerID int64) (StreakSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.outcome, COALESCE(mp.team, 'red')
		FROM game.matches m
		LEFT JOIN game.match_participants mp
			ON mp.match_id = m.id AND mp.player_id = $1
		WHERE m.scored_at IS NOT NULL
			AND (mp.player_id IS NOT NULL OR m.infiltrator_id = $1)
		ORDER BY m.created_at ASC, m.id ASC
	`, playerID)
	if err != nil {
		return StreakSummary{}, err
	}
	defer rows.Close()

	var results []bool
	for rows.Next() {
		var outcome, team string
		if err := rows.Scan(&outcome, &team); err != nil {
			return StreakSummary{}, err
		}
		side := SideRed
		if Side(team) == SideBlue {
			side = SideBlue
		}
		results = append(results, Outcome(outcome).Winner() == side)
	}
	if err := rows.Err(); err != nil {
		return StreakSummary{}, err
	}
	return streakMaxima(results), nil
}

// ===== Leaderboards =====

func (s *Service) LeaderboardByRating(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	return s.leaderboard(ctx, "rating", limit)
}

func (s *Service) LeaderboardByCoins(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	return s.leaderboard(ctx, "coin_balance", limit)
}

func (s *Service) leaderboard(ctx context.Context, column string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, first_name, last_name, username, `+column+`
		FROM game.players
		ORDER BY `+column+` DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.PlayerID, &r.FirstName, &r.LastName, &r.Username, &r.Value); err != nil {
			return nil, err
		}
		r.Rank = int64(len(out) + 1)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ===== Shop =====

func (s *Service) PurchaseItem(ctx context.Context, in PurchaseInput) (Purchase, error) {
	item, ok := ShopItemByCode(strings.TrimSpace(in.ItemCode))
	if !ok {
		return Purchase{}, ErrItemNotFound
	}
	var out Purchase
	err := s.runSerializable(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.PlayerID, in.IdempotencyKey, "purchase"); err != nil {
			return err
		}
		var balance int
		err := tx.QueryRow(ctx, `
			SELECT coin_balance FROM game.players WHERE id = $1 FOR UPDATE
		`, in.PlayerID).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPlayerNotFound
		}
		if err != nil {
			return err
		}
		if balance < item.Cost {
			return fmt.Errorf("%w: %q costs %d, balance is %d", ErrInsufficientCoins, item.Title, item.Cost, balance)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game.players SET coin_balance = coin_balance - $2 WHERE id = $1
		`, in.PlayerID, item.Cost); err != nil {
			return err
		}
		out = Purchase{PlayerID: in.PlayerID, ItemCode: item.Code, Title: item.Title, Cost: item.Cost}
		return tx.QueryRow(ctx, `
			INSERT INTO game.purchases (player_id, item_code, title, cost)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, in.PlayerID, item.Code, item.Title, item.Cost).Scan(&out.ID, &out.CreatedAt)
	})
	if err != nil {
		return Purchase{}, err
	}
	s.log.Info("purchase recorded", "player_id", in.PlayerID, "item", item.Code, "cost", item.Cost)
	return out, nil
}

func (s *Service) ListPurchases(ctx context.Context, playerID int64) ([]Purchase, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, player_id, item_code, title, cost, received, created_at
		FROM game.purchases
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.PlayerID, &p.ItemCode, &p.Title, &p.Cost, &p.Received, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Service) SetPurchaseReceived(ctx context.Context, playerID, purchaseID int64, received bool) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE game.purchases SET received = $3 WHERE id = $1 AND player_id = $2
	`, purchaseID, playerID, received)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}

func claimIdempotency(ctx context.Context, tx pgx.Tx, playerID int64, key, action string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("idempotency key is required")
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO game.idempotency_keys (player_id, key, action)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, key) DO NOTHING
	`, playerID, key, action)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateIdempotency
	}
	return nil
}

// ===== Transaction plumbing =====

func (s *Service) runSerializable(ctx context.Context, fn func(pgx.Tx) error) error {
	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}
