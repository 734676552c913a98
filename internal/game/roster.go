package game

import "fmt"

// ValidateRosters checks a candidate composition against the structural rules,
// in order, first failure wins. It has no side effects; callers run it before
// allowing an outcome to be recorded, and scoring re-checks it.
func ValidateRosters(blue, red []int64, infiltrator int64, maxBlue int) (bool, string) {
	if len(blue) == 0 {
		return false, "add players to the blue team"
	}
	if len(red) == 0 {
		return false, "add players to the red team"
	}
	if len(blue) > maxBlue {
		return false, fmt.Sprintf("blue team is capped at %d players", maxBlue)
	}
	if len(red) > MaxRed {
		return false, fmt.Sprintf("red team is capped at %d players", MaxRed)
	}
	if infiltrator == 0 {
		return false, "pick the infiltrator"
	}
	for _, id := range blue {
		if id == infiltrator {
			return false, "the infiltrator cannot sit on the blue team"
		}
	}
	return true, ""
}

// extendedRed is the scoring roster for the red side: the red participants
// plus the infiltrator, deduplicated, in stable roster order.
func extendedRed(red []int64, infiltrator int64) []int64 {
	out := make([]int64, 0, len(red)+1)
	seen := make(map[int64]bool, len(red)+1)
	for _, id := range red {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if infiltrator != 0 && !seen[infiltrator] {
		out = append(out, infiltrator)
	}
	return out
}

// matchParticipants is blue plus the extended red roster; the two are disjoint
// once the rosters validate, so no further deduplication is needed.
func matchParticipants(blue, extRed []int64) []int64 {
	out := make([]int64, 0, len(blue)+len(extRed))
	out = append(out, blue...)
	out = append(out, extRed...)
	return out
}
