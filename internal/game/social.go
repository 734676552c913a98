package game

// socialGrant is one player's achievement increments for a single match.
type socialGrant struct {
	SocialBlue        int
	SocialRed         int
	SocialInfiltrator int
	KillerPoints      int
}

func (g socialGrant) total() int {
	return g.SocialBlue + g.SocialRed + g.SocialInfiltrator + g.KillerPoints
}

// socialGrants maps the outcome to per-player achievement increments. Red-side
// grants go to the extended red roster, so the infiltrator collects a faction
// point alongside the distinguished-role point on an installation win.
func socialGrants(outcome Outcome, blue, extRed []int64, infiltrator, killer int64) map[int64]socialGrant {
	grants := make(map[int64]socialGrant, len(blue)+len(extRed))

	switch outcome {
	case OutcomeBlueObjective, OutcomeBlueKill:
		for _, id := range blue {
			g := grants[id]
			g.SocialBlue++
			grants[id] = g
		}
		if outcome == OutcomeBlueKill && killer != 0 {
			g := grants[killer]
			g.KillerPoints++
			grants[killer] = g
		}
	case OutcomeRedObjective, OutcomeRedInstall:
		for _, id := range extRed {
			g := grants[id]
			g.SocialRed++
			grants[id] = g
		}
		if outcome == OutcomeRedInstall && infiltrator != 0 {
			g := grants[infiltrator]
			g.SocialInfiltrator++
			grants[infiltrator] = g
		}
	}
	return grants
}
