package fixture

import (
	"fmt"
	"strings"
)

// Collection is the remote path and local cache name for matches.
const Collection = "matches"

// Categories is the known age-category vocabulary in display order.
var Categories = []string{"U09", "U11", "U13", "U15"}

// Match is one scheduled or played fixture. Nil goals mean the match has not been played.
type Match struct {
	ID        string `json:"id"`
	HomeID    string `json:"homeId"`
	AwayID    string `json:"awayId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Venue     string `json:"venue"`
	HomeGoals *int   `json:"homeGoals"`
	AwayGoals *int   `json:"awayGoals"`
	Category  string `json:"category,omitempty"`
	Round     int    `json:"round,omitempty"`
}

// Played requires both scores; a single recorded score is not a partial result.
func (m Match) Played() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// CategoryLabel is the upper-cased category when it is in the vocabulary, otherwise "".
func (m Match) CategoryLabel() string {
	return NormalizeCategory(m.Category)
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("match id is required")
	}
	if strings.TrimSpace(m.HomeID) == "" || strings.TrimSpace(m.AwayID) == "" {
		return fmt.Errorf("match home and away teams are required")
	}
	if m.HomeID == m.AwayID {
		return fmt.Errorf("match home and away teams must differ")
	}
	if (m.HomeGoals != nil && *m.HomeGoals < 0) || (m.AwayGoals != nil && *m.AwayGoals < 0) {
		return fmt.Errorf("match goals must not be negative")
	}
	if m.Round < 0 {
		return fmt.Errorf("match round must not be negative")
	}
	return nil
}

func NormalizeCategory(value string) string {
	c := strings.ToUpper(strings.TrimSpace(value))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return ""
}

// Goals returns a pointer to v, for building matches in code.
func Goals(v int) *int {
	return &v
}
