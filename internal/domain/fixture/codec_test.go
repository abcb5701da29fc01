package fixture

import (
	"testing"

	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

func TestDecode_GoalsAndAliases(t *testing.T) {
	t.Parallel()

	snap := snapshot.Snapshot{Path: Collection, Raw: []byte(`[
		{"id":"m1","homeId":"t1","awayId":"t2","homeGoals":2,"awayGoals":1,"cat":"u11","r":3},
		{"id":"m2","homeId":"t1","awayId":"t2","homeGoals":null,"awayGoals":null},
		{"id":"m3","homeId":"t1","awayId":"t2","homeGoals":"x","awayGoals":-1,"round":2.5},
		{"id":"m4","homeId":1,"awayId":2,"homeGoals":"3","awayGoals":0}
	]`)}

	matches, err := Decode(snap)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(matches) != 4 {
		t.Fatalf("len=%d want 4", len(matches))
	}

	m1 := matches[0]
	if !m1.Played() || *m1.HomeGoals != 2 || *m1.AwayGoals != 1 || m1.Category != "u11" || m1.CategoryLabel() != "U11" || m1.Round != 3 {
		t.Fatalf("unexpected m1 %+v", m1)
	}
	if matches[1].Played() {
		t.Fatalf("null goals must be unplayed")
	}
	if matches[2].HomeGoals != nil || matches[2].AwayGoals != nil || matches[2].Round != 0 {
		t.Fatalf("invalid goals or round should decode as unset: %+v", matches[2])
	}
	m4 := matches[3]
	if m4.HomeID != "1" || m4.AwayID != "2" || !m4.Played() || *m4.HomeGoals != 3 {
		t.Fatalf("unexpected m4 %+v", m4)
	}
}

func TestRemote_WritesNullForUnplayed(t *testing.T) {
	t.Parallel()

	doc := Match{ID: "m2", HomeID: "t3", AwayID: "t1", HomeGoals: Goals(1)}.Remote()
	if v, ok := doc["awayGoals"]; !ok || v != nil {
		t.Fatalf("awayGoals should be an explicit null, got %v (present=%v)", v, ok)
	}
	if doc["homeGoals"] != 1 {
		t.Fatalf("homeGoals=%v", doc["homeGoals"])
	}
	if _, ok := doc["round"]; ok {
		t.Fatalf("round 0 should be omitted")
	}
}

func TestMatch_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		match   Match
		wantErr bool
	}{
		{name: "ok", match: Match{ID: "m1", HomeID: "t1", AwayID: "t2"}},
		{name: "same team", match: Match{ID: "m1", HomeID: "t1", AwayID: "t1"}, wantErr: true},
		{name: "missing side", match: Match{ID: "m1", HomeID: "t1"}, wantErr: true},
		{name: "negative", match: Match{ID: "m1", HomeID: "t1", AwayID: "t2", HomeGoals: Goals(-1)}, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := tc.match.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("Validate err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}
