package game

import "testing"

func TestValidateRosters(t *testing.T) {
	tests := []struct {
		name        string
		blue        []int64
		red         []int64
		infiltrator int64
		wantOK      bool
	}{
		{"valid", []int64{1, 2, 3}, []int64{4, 5}, 6, true},
		{"infiltrator rostered on red", []int64{1, 2}, []int64{4, 5, 6}, 6, true},
		{"empty blue", nil, []int64{4, 5}, 6, false},
		{"empty red", []int64{1, 2}, nil, 6, false},
		{"infiltrator alone is not a red team", []int64{1, 2}, nil, 3, false},
		{"blue over cap", []int64{1, 2, 3, 4, 5, 6, 7}, []int64{8, 9}, 10, false},
		{"red over cap", []int64{1, 2}, []int64{3, 4, 5, 6}, 7, false},
		{"no infiltrator", []int64{1, 2}, []int64{3, 4}, 0, false},
		{"infiltrator on blue", []int64{1, 2, 6}, []int64{3, 4}, 6, false},
	}
	for _, tc := range tests {
		ok, reason := ValidateRosters(tc.blue, tc.red, tc.infiltrator, 6)
		if ok != tc.wantOK {
			t.Fatalf("%s: got ok=%v (%q), want ok=%v", tc.name, ok, reason, tc.wantOK)
		}
		if !ok && reason == "" {
			t.Fatalf("%s: rejection must carry a reason", tc.name)
		}
	}
}

func TestValidateRostersFirstFailureWins(t *testing.T) {
	// Empty blue must be reported even when the infiltrator is missing too.
	_, reason := ValidateRosters(nil, nil, 0, 6)
	if reason != "add players to the blue team" {
		t.Fatalf("got reason %q", reason)
	}
}

func TestExtendedRed(t *testing.T) {
	got := extendedRed([]int64{4, 5}, 6)
	if len(got) != 3 || got[0] != 4 || got[1] != 5 || got[2] != 6 {
		t.Fatalf("infiltrator outside roster: got %v", got)
	}

	got = extendedRed([]int64{4, 5, 6}, 6)
	if len(got) != 3 {
		t.Fatalf("infiltrator already rostered must not duplicate: got %v", got)
	}

	got = extendedRed(nil, 6)
	if len(got) != 1 || got[0] != 6 {
		t.Fatalf("infiltrator only: got %v", got)
	}
}
