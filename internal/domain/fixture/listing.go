package fixture

import (
	"sort"

	"github.com/riskibarqy/starleague/internal/domain/team"
)

// SortBySchedule orders matches by date then time, lexicographically and stably.
func SortBySchedule(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Date != matches[j].Date {
			return matches[i].Date < matches[j].Date
		}
		return matches[i].Time < matches[j].Time
	})
}

func sortNewestFirst(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Date != matches[j].Date {
			return matches[i].Date > matches[j].Date
		}
		return matches[i].Time > matches[j].Time
	})
}

// Schedule returns a copy of all matches in schedule order.
func Schedule(matches []Match) []Match {
	out := append([]Match(nil), matches...)
	SortBySchedule(out)
	return out
}

// Results returns the played matches in schedule order.
func Results(matches []Match) []Match {
	out := filter(matches, Match.Played)
	SortBySchedule(out)
	return out
}

// Latest returns up to n played matches, newest first. n <= 0 returns all of them.
func Latest(matches []Match, n int) []Match {
	out := filter(matches, Match.Played)
	sortNewestFirst(out)
	return limit(out, n)
}

// Recent returns up to n matches regardless of result, newest first.
func Recent(matches []Match, n int) []Match {
	out := append([]Match(nil), matches...)
	sortNewestFirst(out)
	return limit(out, n)
}

// NextUpcoming is the first unplayed match in schedule order.
func NextUpcoming(matches []Match) (Match, bool) {
	for _, m := range Schedule(matches) {
		if !m.Played() {
			return m, true
		}
	}
	return Match{}, false
}

// Line is a match joined with its team names for listings.
type Line struct {
	Match
	HomeName string `json:"homeName"`
	AwayName string `json:"awayName"`
}

// Lines resolves team names; dangling ids render as team.UnknownName.
func Lines(teams []team.Team, matches []Match) []Line {
	idx := team.NewIndex(teams)
	out := make([]Line, 0, len(matches))
	for _, m := range matches {
		out = append(out, Line{
			Match:    m,
			HomeName: idx.Name(m.HomeID),
			AwayName: idx.Name(m.AwayID),
		})
	}
	return out
}

// ReferencesTeam reports whether any match uses teamID on either side.
func ReferencesTeam(matches []Match, teamID string) bool {
	for _, m := range matches {
		if m.HomeID == teamID || m.AwayID == teamID {
			return true
		}
	}
	return false
}

func limit(matches []Match, n int) []Match {
	if n > 0 && len(matches) > n {
		return matches[:n]
	}
	return matches
}
