package game

import "time"

type Player struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name,omitempty"`
	Username          string    `json:"username,omitempty"`
	Rating            int       `json:"rating"`
	BlueWins          int       `json:"blue_wins"`
	RedWins           int       `json:"red_wins"`
	InfiltratorWins   int       `json:"infiltrator_wins"`
	SocialBlue        int       `json:"social_blue"`
	SocialRed         int       `json:"social_red"`
	SocialInfiltrator int       `json:"social_infiltrator"`
	KillerPoints      int       `json:"killer_points"`
	CoinBalance       int       `json:"coin_balance"`
	WinStreak         int       `json:"win_streak"`
	LoseStreak        int       `json:"lose_streak"`
	CreatedAt         time.Time `json:"created_at"`
}

type Match struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	CreatedBy     int64      `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	Outcome       Outcome    `json:"outcome,omitempty"`
	InfiltratorID int64      `json:"infiltrator_id,omitempty"`
	KillerID      int64      `json:"killer_id,omitempty"`
	ScoredAt      *time.Time `json:"scored_at,omitempty"`
}

type MatchDetail struct {
	Match
	Blue []Player `json:"blue"`
	Red  []Player `json:"red"`
}

type Purchase struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	ItemCode  string    `json:"item_code"`
	Title     string    `json:"title"`
	Cost      int       `json:"cost"`
	Received  bool      `json:"received"`
	CreatedAt time.Time `json:"created_at"`
}

type PurchaseInput struct {
	PlayerID       int64
	ItemCode       string
	IdempotencyKey string
}

// ApplyResult summarizes one scored match.
type ApplyResult struct {
	MatchID   int64   `json:"match_id"`
	Outcome   Outcome `json:"outcome"`
	Winner    Side    `json:"winner"`
	Favorite  Side    `json:"favorite"`
	AvgBlue   float64 `json:"avg_blue"`
	AvgRed    float64 `json:"avg_red"`
	DeltaBlue int     `json:"delta_blue"`
	DeltaRed  int     `json:"delta_red"`
}

type RecomputeSummary struct {
	MatchesProcessed int `json:"matches_processed"`
	PlayersAffected  int `json:"players_affected"`
	PurchasesNetted  int `json:"purchases_netted"`
}

type StreakSummary struct {
	CurrentWin  int `json:"current_win"`
	CurrentLose int `json:"current_lose"`
	MaxWin      int `json:"max_win"`
	MaxLose     int `json:"max_lose"`
}

type LeaderboardRow struct {
	Rank      int64  `json:"rank"`
	PlayerID  int64  `json:"player_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Value     int    `json:"value"`
}
