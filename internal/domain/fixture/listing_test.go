package fixture

import (
	"testing"

	"github.com/riskibarqy/starleague/internal/domain/team"
)

var listingMatches = []Match{
	{ID: "m1", HomeID: "t1", AwayID: "t2", Date: "2025-09-10", Time: "18:00", HomeGoals: Goals(2), AwayGoals: Goals(1)},
	{ID: "m2", HomeID: "t3", AwayID: "t1", Date: "2025-09-15", Time: "20:00"},
	{ID: "m3", HomeID: "t2", AwayID: "t3", Date: "2025-09-12", Time: "18:00", HomeGoals: Goals(0), AwayGoals: Goals(0)},
	{ID: "m4", HomeID: "t2", AwayID: "t1", Date: "2025-09-11", Time: "18:00", HomeGoals: Goals(1)},
}

func ids(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.ID)
	}
	return out
}

func TestListings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		got  []Match
		want []string
	}{
		{name: "results", got: Results(listingMatches), want: []string{"m1", "m3"}},
		{name: "latest", got: Latest(listingMatches, 8), want: []string{"m3", "m1"}},
		{name: "latest limited", got: Latest(listingMatches, 1), want: []string{"m3"}},
		{name: "recent", got: Recent(listingMatches, 3), want: []string{"m2", "m3", "m4"}},
		{name: "schedule", got: Schedule(listingMatches), want: []string{"m1", "m4", "m3", "m2"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ids(tc.got)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v want %v", got, tc.want)
				}
			}
		})
	}
}

func TestNextUpcoming_SkipsHalfRecordedMatch(t *testing.T) {
	t.Parallel()

	next, ok := NextUpcoming(listingMatches)
	if !ok || next.ID != "m4" {
		t.Fatalf("next=%+v ok=%v, want m4 (single score counts as unplayed)", next, ok)
	}

	if _, ok := NextUpcoming(Results(listingMatches)); ok {
		t.Fatalf("no upcoming match expected among results")
	}
}

func TestLines_PlaceholderForDanglingTeam(t *testing.T) {
	t.Parallel()

	lines := Lines([]team.Team{{ID: "t1", Name: "Stars"}}, []Match{{ID: "m1", HomeID: "t1", AwayID: "t99"}})
	if lines[0].HomeName != "Stars" || lines[0].AwayName != team.UnknownName {
		t.Fatalf("unexpected line %+v", lines[0])
	}
}

func TestReferencesTeam(t *testing.T) {
	t.Parallel()

	if !ReferencesTeam(listingMatches, "t3") {
		t.Fatalf("t3 is referenced")
	}
	if ReferencesTeam(listingMatches, "t9") {
		t.Fatalf("t9 is not referenced")
	}
}
