package game

import (
	"fmt"
	"math"
	"strings"
)

// RatingPolicy selects the delta curve applied after each match. Exactly one
// policy is live per engine instance; both curves stay available so operators
// can switch via configuration and recompute history under the new curve.
type RatingPolicy string

const (
	PolicyDiscrete   RatingPolicy = "discrete"
	PolicyContinuous RatingPolicy = "continuous"
)

func ParseRatingPolicy(s string) (RatingPolicy, error) {
	switch RatingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyDiscrete, "":
		return PolicyDiscrete, nil
	case PolicyContinuous:
		return PolicyContinuous, nil
	}
	return "", fmt.Errorf("unknown rating policy %q", s)
}

// ratingDelta converts team-strength averages and the winning side into
// (deltaBlue, deltaRed). Deltas are opposite in sign but intentionally not
// required to cancel; the curves shrink what a favorite can win and grow what
// an upset pays out. On an exact tie blue counts as the strong side.
func ratingDelta(policy RatingPolicy, avgBlue, avgRed float64, winner Side) (int, int) {
	if policy == PolicyContinuous {
		return continuousDelta(avgBlue, avgRed, winner)
	}
	return discreteDelta(avgBlue, avgRed, winner)
}

// continuousDelta: x = floor(diff/10), clamped to 41 once floor exceeds 40.
// Strong side wins: strong +(51-x), weak -(49-x). Weak side wins: weak
// +(51+x), strong -(49+x).
func continuousDelta(avgBlue, avgRed float64, winner Side) (int, int) {
	diff := math.Abs(avgBlue - avgRed)
	x := int(diff / 10)
	if x > 40 {
		x = 41
	}

	blueStrong := avgBlue >= avgRed

	var deltaBlue, deltaRed int
	if winner == SideBlue {
		if blueStrong {
			deltaBlue = 51 - x
			deltaRed = -(49 - x)
		} else {
			deltaBlue = 51 + x
			deltaRed = -(49 + x)
		}
	} else {
		if !blueStrong {
			deltaRed = 51 - x
			deltaBlue = -(49 - x)
		} else {
			deltaRed = 51 + x
			deltaBlue = -(49 + x)
		}
	}
	return deltaBlue, deltaRed
}

// discreteTier holds the per-side (win, loss) values for one strength-gap band.
type discreteTier struct {
	maxDiff    float64
	strongWin  int
	strongLose int
	weakWin    int
	weakLose   int
}

var discreteTiers = []discreteTier{
	{maxDiff: 250, strongWin: 25, strongLose: -25, weakWin: 25, weakLose: -25},
	{maxDiff: 500, strongWin: 23, strongLose: -28, weakWin: 28, weakLose: -23},
	{maxDiff: 1000, strongWin: 20, strongLose: -30, weakWin: 30, weakLose: -20},
	{maxDiff: math.Inf(1), strongWin: 15, strongLose: -35, weakWin: 35, weakLose: -15},
}

func discreteDelta(avgBlue, avgRed float64, winner Side) (int, int) {
	diff := math.Abs(avgBlue - avgRed)
	var tier discreteTier
	for _, t := range discreteTiers {
		if diff <= t.maxDiff {
			tier = t
			break
		}
	}

	blueStrong := avgBlue >= avgRed
	strongWon := (winner == SideBlue) == blueStrong

	var deltaStrong, deltaWeak int
	if strongWon {
		deltaStrong = tier.strongWin
		deltaWeak = tier.weakLose
	} else {
		deltaStrong = tier.strongLose
		deltaWeak = tier.weakWin
	}

	if blueStrong {
		return deltaStrong, deltaWeak
	}
	return deltaWeak, deltaStrong
}

// teamAvg is the mean rating over a roster. Rosters are validated non-empty
// before scoring; the denominator floor only protects replay over damaged
// history.
func teamAvg(ratings []int) float64 {
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	n := len(ratings)
	if n == 0 {
		n = 1
	}
	return float64(sum) / float64(n)
}
