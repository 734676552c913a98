package game

import "testing"

func TestDiscreteDeltaEqualAverages(t *testing.T) {
	// Blue counts as the strong side on an exact tie.
	dBlue, dRed := discreteDelta(3000, 3000, SideRed)
	if dBlue != -25 || dRed != 25 {
		t.Fatalf("red win on tie: got (%d, %d), want (-25, 25)", dBlue, dRed)
	}
	dBlue, dRed = discreteDelta(3000, 3000, SideBlue)
	if dBlue != 25 || dRed != -25 {
		t.Fatalf("blue win on tie: got (%d, %d), want (25, -25)", dBlue, dRed)
	}
}

func TestDiscreteDeltaTiers(t *testing.T) {
	tests := []struct {
		name     string
		avgBlue  float64
		avgRed   float64
		winner   Side
		wantBlue int
		wantRed  int
	}{
		{"small gap favorite wins", 3100, 2900, SideBlue, 25, -25},
		{"small gap upset", 3100, 2900, SideRed, -25, 25},
		{"mid gap favorite wins", 3300, 2900, SideBlue, 23, -23},
		{"mid gap upset", 3300, 2900, SideRed, -28, 28},
		{"large gap favorite wins", 3600, 2900, SideBlue, 20, -20},
		{"large gap upset", 3600, 2900, SideRed, -30, 30},
		{"huge gap favorite wins", 4200, 2900, SideBlue, 15, -15},
		{"huge gap upset", 4200, 2900, SideRed, -35, 35},
		{"red is the favorite", 2900, 3300, SideRed, -23, 23},
		{"red favorite upset", 2900, 3300, SideBlue, 28, -28},
	}
	for _, tc := range tests {
		dBlue, dRed := discreteDelta(tc.avgBlue, tc.avgRed, tc.winner)
		if dBlue != tc.wantBlue || dRed != tc.wantRed {
			t.Fatalf("%s: got (%d, %d), want (%d, %d)", tc.name, dBlue, dRed, tc.wantBlue, tc.wantRed)
		}
	}
}

func TestContinuousDelta(t *testing.T) {
	tests := []struct {
		name     string
		avgBlue  float64
		avgRed   float64
		winner   Side
		wantBlue int
		wantRed  int
	}{
		{"tie, blue wins", 3000, 3000, SideBlue, 51, -49},
		{"tie, red wins", 3000, 3000, SideRed, -49, 51},
		{"gap 400 favorite wins", 3400, 3000, SideBlue, 11, -9},
		{"gap 400 upset", 3400, 3000, SideRed, -89, 91},
		{"gap past cap favorite wins", 3500, 3000, SideBlue, 10, -8},
		{"gap past cap upset", 3500, 3000, SideRed, -90, 92},
		{"red favorite gap 100", 2900, 3000, SideRed, -39, 41},
	}
	for _, tc := range tests {
		dBlue, dRed := continuousDelta(tc.avgBlue, tc.avgRed, tc.winner)
		if dBlue != tc.wantBlue || dRed != tc.wantRed {
			t.Fatalf("%s: got (%d, %d), want (%d, %d)", tc.name, dBlue, dRed, tc.wantBlue, tc.wantRed)
		}
	}
}

func TestDeltaSignsAlwaysOppose(t *testing.T) {
	avgs := []float64{2500, 2995, 3000, 3250, 3800, 4500}
	for _, policy := range []RatingPolicy{PolicyDiscrete, PolicyContinuous} {
		for _, a := range avgs {
			for _, b := range avgs {
				for _, winner := range []Side{SideBlue, SideRed} {
					dBlue, dRed := ratingDelta(policy, a, b, winner)
					if dBlue*dRed >= 0 {
						t.Fatalf("%s avg(%v, %v) winner=%s: deltas (%d, %d) do not oppose",
							policy, a, b, winner, dBlue, dRed)
					}
					winDelta := dBlue
					if winner == SideRed {
						winDelta = dRed
					}
					if winDelta <= 0 {
						t.Fatalf("%s avg(%v, %v) winner=%s: winner delta %d not positive",
							policy, a, b, winner, winDelta)
					}
				}
			}
		}
	}
}

func TestParseRatingPolicy(t *testing.T) {
	if p, err := ParseRatingPolicy(" Discrete "); err != nil || p != PolicyDiscrete {
		t.Fatalf("got (%q, %v)", p, err)
	}
	if p, err := ParseRatingPolicy("continuous"); err != nil || p != PolicyContinuous {
		t.Fatalf("got (%q, %v)", p, err)
	}
	if _, err := ParseRatingPolicy("elo"); err == nil {
		t.Fatalf("expected unknown policy to fail")
	}
}
