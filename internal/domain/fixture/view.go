package fixture

import (
	"sort"
	"strings"

	"github.com/riskibarqy/starleague/internal/domain/team"
)

// Selection narrows the fixture view. Empty Category or Group and nil Round mean "all".
type Selection struct {
	Category string `json:"category"`
	Group    string `json:"group"`
	Round    *int   `json:"round"`
}

func (s Selection) normalized() Selection {
	return Selection{
		Category: strings.ToUpper(strings.TrimSpace(s.Category)),
		Group:    strings.ToUpper(strings.TrimSpace(s.Group)),
		Round:    s.Round,
	}
}

// RoundGroup holds the matches of one round; round 0 collects matches without a round.
type RoundGroup struct {
	Round   int     `json:"round"`
	Matches []Match `json:"matches"`
}

type View struct {
	Groups              []RoundGroup `json:"groups"`
	AvailableCategories []string     `json:"availableCategories"`
	AvailableGroups     []string     `json:"availableGroups"`
	AvailableRounds     []int        `json:"availableRounds"`
	// Selection is the effective selection after stale values were reset to "all".
	Selection Selection `json:"selection"`
}

// ComputeView filters by category, then group, then round, and groups the remainder by round.
// Each axis offers only the values present after the previous filters, and a selected value
// that is not offered falls back to "all".
func ComputeView(teams []team.Team, matches []Match, sel Selection) View {
	sel = sel.normalized()
	idx := team.NewIndex(teams)

	availableCategories := categoriesIn(matches)
	if sel.Category != "" && !containsString(availableCategories, sel.Category) {
		sel.Category = ""
	}
	list := filter(matches, func(m Match) bool {
		return sel.Category == "" || m.CategoryLabel() == sel.Category
	})

	availableGroups := groupsIn(idx, list)
	if sel.Group != "" && !containsString(availableGroups, sel.Group) {
		sel.Group = ""
	}
	list = filter(list, func(m Match) bool {
		if sel.Group == "" {
			return true
		}
		return groupOf(idx, m.HomeID) == sel.Group || groupOf(idx, m.AwayID) == sel.Group
	})

	availableRounds := roundsIn(list)
	if sel.Round != nil && !containsInt(availableRounds, *sel.Round) {
		sel.Round = nil
	}
	list = filter(list, func(m Match) bool {
		return sel.Round == nil || m.Round == *sel.Round
	})

	return View{
		Groups:              groupByRound(list),
		AvailableCategories: availableCategories,
		AvailableGroups:     availableGroups,
		AvailableRounds:     availableRounds,
		Selection:           sel,
	}
}

func categoriesIn(matches []Match) []string {
	present := make(map[string]struct{}, len(Categories))
	for _, m := range matches {
		if c := m.CategoryLabel(); c != "" {
			present[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(present))
	for _, c := range Categories {
		if _, ok := present[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func groupsIn(idx team.Index, matches []Match) []string {
	set := make(map[string]struct{})
	for _, m := range matches {
		for _, id := range [2]string{m.HomeID, m.AwayID} {
			if g := groupOf(idx, id); g != "" {
				set[g] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

func groupOf(idx team.Index, teamID string) string {
	t, ok := idx[teamID]
	if !ok {
		return ""
	}
	return t.GroupLabel()
}

func roundsIn(matches []Match) []int {
	set := make(map[int]struct{})
	for _, m := range matches {
		set[m.Round] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

func groupByRound(matches []Match) []RoundGroup {
	byRound := make(map[int][]Match)
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	out := make([]RoundGroup, 0, len(byRound))
	for _, r := range roundsIn(matches) {
		items := byRound[r]
		SortBySchedule(items)
		out = append(out, RoundGroup{Round: r, Matches: items})
	}
	return out
}

func filter(matches []Match, keep func(Match) bool) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func containsString(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}
