package leaguestanding

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/team"
)

// Compute builds the table from scratch. Every team gets a row, only played matches between two
// known teams count, and rows are ordered by points, goal difference, goals for, collated team
// name and finally team id.
func Compute(teams []team.Team, matches []fixture.Match) []Standing {
	rows := make([]*Standing, 0, len(teams))
	byID := make(map[string]*Standing, len(teams))
	for _, t := range teams {
		if row, ok := byID[t.ID]; ok {
			// Repeated id: keep the first slot, take the later name.
			row.TeamName = t.Name
			continue
		}
		row := &Standing{TeamID: t.ID, TeamName: t.Name}
		byID[t.ID] = row
		rows = append(rows, row)
	}

	for _, m := range matches {
		if !m.Played() {
			continue
		}
		home, okHome := byID[m.HomeID]
		away, okAway := byID[m.AwayID]
		if !okHome || !okAway {
			continue
		}
		applyResult(home, away, *m.HomeGoals, *m.AwayGoals)
	}

	out := make([]Standing, 0, len(rows))
	for _, row := range rows {
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		out = append(out, *row)
	}

	// collate.Collator is not safe for concurrent use.
	names := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if c := names.CompareString(a.TeamName, b.TeamName); c != 0 {
			return c < 0
		}
		return a.TeamID < b.TeamID
	})

	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

func applyResult(home, away *Standing, homeGoals, awayGoals int) {
	home.Played++
	away.Played++
	home.GoalsFor += homeGoals
	home.GoalsAgainst += awayGoals
	away.GoalsFor += awayGoals
	away.GoalsAgainst += homeGoals

	switch {
	case homeGoals > awayGoals:
		home.Won++
		home.Points += PointsWin
		away.Lost++
		away.Points += PointsLoss
	case homeGoals < awayGoals:
		away.Won++
		away.Points += PointsWin
		home.Lost++
		home.Points += PointsLoss
	default:
		home.Draw++
		away.Draw++
		home.Points += PointsDraw
		away.Points += PointsDraw
	}
}
