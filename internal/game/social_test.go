package game

import "testing"

func TestSocialGrantsBlueObjective(t *testing.T) {
	grants := socialGrants(OutcomeBlueObjective, []int64{1, 2, 3}, []int64{4, 5}, 5, 0)
	for _, id := range []int64{1, 2, 3} {
		if g := grants[id]; g.SocialBlue != 1 || g.total() != 1 {
			t.Fatalf("blue player %d: %+v", id, g)
		}
	}
	for _, id := range []int64{4, 5} {
		if g, ok := grants[id]; ok {
			t.Fatalf("red player %d must get nothing on a blue win, got %+v", id, g)
		}
	}
}

func TestSocialGrantsBlueKill(t *testing.T) {
	grants := socialGrants(OutcomeBlueKill, []int64{1, 2}, []int64{3, 4}, 4, 2)
	if g := grants[1]; g.SocialBlue != 1 || g.KillerPoints != 0 {
		t.Fatalf("bystander blue: %+v", g)
	}
	if g := grants[2]; g.SocialBlue != 1 || g.KillerPoints != 1 || g.total() != 2 {
		t.Fatalf("killer must stack faction and kill points: %+v", g)
	}
}

func TestSocialGrantsRedObjective(t *testing.T) {
	grants := socialGrants(OutcomeRedObjective, []int64{1, 2}, []int64{3, 4}, 4, 0)
	for _, id := range []int64{3, 4} {
		if g := grants[id]; g.SocialRed != 1 || g.SocialInfiltrator != 0 {
			t.Fatalf("red player %d: %+v", id, g)
		}
	}
	if len(grants) != 2 {
		t.Fatalf("blue players must get nothing on a red win, got %d grants", len(grants))
	}
}

func TestSocialGrantsRedInstall(t *testing.T) {
	grants := socialGrants(OutcomeRedInstall, []int64{1, 2}, []int64{3, 4}, 4, 0)
	if g := grants[3]; g.SocialRed != 1 || g.total() != 1 {
		t.Fatalf("rank-and-file red: %+v", g)
	}
	if g := grants[4]; g.SocialRed != 1 || g.SocialInfiltrator != 1 || g.total() != 2 {
		t.Fatalf("infiltrator must stack faction and role points: %+v", g)
	}
}
