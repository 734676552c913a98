package game

import (
	"errors"
	"fmt"
	"strings"
)

// Side tags a player's membership in one match. The infiltrator designation
// lives on the match row and is independent of a red participant row for the
// same player; scoring always goes through extendedRed to deduplicate.
type Side string

const (
	SideBlue        Side = "blue"
	SideRed         Side = "red"
	SideInfiltrator Side = "infiltrator"
)

func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideBlue:
		return SideBlue, nil
	case SideRed: // the infiltrator is never set through a roster edit
		return SideRed, nil
	}
	return "", fmt.Errorf("unknown team %q", s)
}

// Outcome is the recorded result of a finished match. An unset outcome means
// the match contributes nothing to any ledger and its rosters stay mutable.
type Outcome string

const (
	OutcomeBlueObjective Outcome = "blue_objective"
	OutcomeBlueKill      Outcome = "blue_kill"
	OutcomeRedObjective  Outcome = "red_objective"
	OutcomeRedInstall    Outcome = "red_install"
)

func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(strings.ToLower(strings.TrimSpace(s))) {
	case OutcomeBlueObjective:
		return OutcomeBlueObjective, nil
	case OutcomeBlueKill:
		return OutcomeBlueKill, nil
	case OutcomeRedObjective:
		return OutcomeRedObjective, nil
	case OutcomeRedInstall:
		return OutcomeRedInstall, nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

func (o Outcome) Winner() Side {
	if o == OutcomeBlueObjective || o == OutcomeBlueKill {
		return SideBlue
	}
	return SideRed
}

// RequiresKiller reports whether the outcome is only valid with a recorded
// killer (blue eliminated the infiltrator directly).
func (o Outcome) RequiresKiller() bool {
	return o == OutcomeBlueKill
}

// MaxRed is the fixed red roster cap, not counting the infiltrator.
const MaxRed = 3

var (
	ErrRosterInvalid        = errors.New("roster invalid")
	ErrIncompleteMatch      = errors.New("match has no outcome")
	ErrAlreadyScored        = errors.New("match already scored")
	ErrMatchNotFound        = errors.New("match not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerHasMatches     = errors.New("player has recorded matches")
	ErrInsufficientCoins    = errors.New("insufficient coins")
	ErrItemNotFound         = errors.New("shop item not found")
	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
	ErrTxConflict           = errors.New("transaction conflict, retry")
)

type ShopItem struct {
	Code  string `json:"code"`
	Title string `json:"title"`
	Cost  int    `json:"cost"`
}

// ShopCatalog is the fixed certificate catalog. Purchases against it form the
// spend ledger that RecomputeAll nets out of coin balances.
var ShopCatalog = []ShopItem{
	{Code: "first_minister", Title: "Claim first minister in the night's opening match", Cost: 5},
	{Code: "unseat_minister", Title: "Claim first minister by unseating the sitting one", Cost: 15},
	{Code: "club_badge", Title: "Club badge", Cost: 100},
	{Code: "room_certificate", Title: "Random room certificate", Cost: 300},
	{Code: "named_ballot", Title: "Personalized ballot", Cost: 300},
}

func ShopItemByCode(code string) (ShopItem, bool) {
	for _, it := range ShopCatalog {
		if it.Code == code {
			return it, true
		}
	}
	return ShopItem{}, false
}
