package leaguestanding

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/team"
)

var alphaBeta = []team.Team{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Beta"}}

func TestCompute_HomeWin(t *testing.T) {
	t.Parallel()

	rows := Compute(alphaBeta, []fixture.Match{
		{ID: "1", HomeID: "1", AwayID: "2", HomeGoals: fixture.Goals(2), AwayGoals: fixture.Goals(1)},
	})

	want := []Standing{
		{Position: 1, TeamID: "1", TeamName: "Alpha", Played: 1, Won: 1, GoalsFor: 2, GoalsAgainst: 1, GoalDifference: 1, Points: 3},
		{Position: 2, TeamID: "2", TeamName: "Beta", Played: 1, Lost: 1, GoalsFor: 1, GoalsAgainst: 2, GoalDifference: -1},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows=%+v\nwant %+v", rows, want)
	}
}

func TestCompute_UnplayedAndHalfRecordedMatchesIgnored(t *testing.T) {
	t.Parallel()

	rows := Compute(alphaBeta, []fixture.Match{
		{ID: "1", HomeID: "1", AwayID: "2"},
		{ID: "2", HomeID: "2", AwayID: "1", HomeGoals: fixture.Goals(4)},
	})
	for _, row := range rows {
		if row.Played != 0 || row.Points != 0 || row.GoalsFor != 0 {
			t.Fatalf("expected zero row, got %+v", row)
		}
	}
	if rows[0].TeamName != "Alpha" || rows[1].TeamName != "Beta" {
		t.Fatalf("zero rows should fall back to name order: %+v", rows)
	}
}

func TestCompute_UnknownTeamSkipsMatch(t *testing.T) {
	t.Parallel()

	rows := Compute(alphaBeta, []fixture.Match{
		{ID: "1", HomeID: "99", AwayID: "2", HomeGoals: fixture.Goals(5), AwayGoals: fixture.Goals(0)},
	})
	for _, row := range rows {
		if row.Played != 0 || row.GoalsAgainst != 0 {
			t.Fatalf("dangling match must not count: %+v", row)
		}
	}
}

func TestCompute_Draw(t *testing.T) {
	t.Parallel()

	rows := Compute(alphaBeta, []fixture.Match{
		{ID: "1", HomeID: "1", AwayID: "2", HomeGoals: fixture.Goals(1), AwayGoals: fixture.Goals(1)},
	})
	for _, row := range rows {
		if row.Draw != 1 || row.Points != 1 || row.Played != 1 || row.GoalDifference != 0 {
			t.Fatalf("unexpected draw row %+v", row)
		}
	}
}

func TestCompute_TieBreakers(t *testing.T) {
	t.Parallel()

	teams := []team.Team{
		{ID: "z", Name: "Étoile"},
		{ID: "y", Name: "Zenith"},
		{ID: "x", Name: "Eagles"},
		{ID: "w", Name: "Atlas"},
	}
	matches := []fixture.Match{
		// Identical 2-0 wins: the table is decided by names alone.
		{ID: "1", HomeID: "w", AwayID: "y", HomeGoals: fixture.Goals(2), AwayGoals: fixture.Goals(0)},
		{ID: "2", HomeID: "x", AwayID: "z", HomeGoals: fixture.Goals(2), AwayGoals: fixture.Goals(0)},
	}

	rows := Compute(teams, matches)
	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.TeamName)
	}
	// Collation sorts É with E, so Étoile precedes Zenith.
	want := []string{"Atlas", "Eagles", "Étoile", "Zenith"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order=%v want %v", got, want)
	}
}

func TestCompute_SameNameFallsBackToID(t *testing.T) {
	t.Parallel()

	rows := Compute([]team.Team{{ID: "b", Name: "Twin"}, {ID: "a", Name: "Twin"}}, nil)
	if rows[0].TeamID != "a" || rows[1].TeamID != "b" {
		t.Fatalf("expected id tie-break, got %+v", rows)
	}
}

func TestCompute_PermutationInvariant(t *testing.T) {
	t.Parallel()

	teams := []team.Team{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "C"}, {ID: "4", Name: "D"}}
	matches := []fixture.Match{
		{ID: "1", HomeID: "1", AwayID: "2", HomeGoals: fixture.Goals(1), AwayGoals: fixture.Goals(0)},
		{ID: "2", HomeID: "3", AwayID: "4", HomeGoals: fixture.Goals(2), AwayGoals: fixture.Goals(2)},
		{ID: "3", HomeID: "2", AwayID: "3", HomeGoals: fixture.Goals(0), AwayGoals: fixture.Goals(3)},
		{ID: "4", HomeID: "4", AwayID: "1", HomeGoals: fixture.Goals(1), AwayGoals: fixture.Goals(1)},
		{ID: "5", HomeID: "1", AwayID: "3"},
	}
	want := Compute(teams, matches)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffledTeams := append([]team.Team(nil), teams...)
		shuffledMatches := append([]fixture.Match(nil), matches...)
		rng.Shuffle(len(shuffledTeams), func(a, b int) { shuffledTeams[a], shuffledTeams[b] = shuffledTeams[b], shuffledTeams[a] })
		rng.Shuffle(len(shuffledMatches), func(a, b int) { shuffledMatches[a], shuffledMatches[b] = shuffledMatches[b], shuffledMatches[a] })

		if got := Compute(shuffledTeams, shuffledMatches); !reflect.DeepEqual(got, want) {
			t.Fatalf("permutation %d changed the table:\n%+v\nwant %+v", i, got, want)
		}
	}
}

func TestCompute_DuplicateTeamIDKeepsSingleRow(t *testing.T) {
	t.Parallel()

	rows := Compute([]team.Team{{ID: "1", Name: "Old"}, {ID: "2", Name: "Beta"}, {ID: "1", Name: "New"}}, nil)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.TeamID == "1" && r.TeamName != "New" {
			t.Fatalf("later duplicate should supply the name: %+v", r)
		}
	}
}
