package team

import (
	"fmt"
	"strings"
)

const (
	// Collection is the remote path and local cache name for teams.
	Collection = "teams"
	// UnknownName stands in for a team id that does not resolve.
	UnknownName = "—"
)

// Team is one club registered in the league.
type Team struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	City     string `json:"city"`
	Logo     string `json:"logo"`
	Group    string `json:"group"`
	Password string `json:"pass,omitempty"`
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}

// GroupLabel is the upper-cased group used by the fixture filters.
func (t Team) GroupLabel() string {
	return strings.ToUpper(strings.TrimSpace(t.Group))
}

// Index resolves team ids. When ids repeat, the last record wins.
type Index map[string]Team

func NewIndex(teams []Team) Index {
	idx := make(Index, len(teams))
	for _, t := range teams {
		idx[t.ID] = t
	}
	return idx
}

func (idx Index) Has(id string) bool {
	_, ok := idx[id]
	return ok
}

// Name returns the team name, or UnknownName for a dangling reference.
func (idx Index) Name(id string) string {
	t, ok := idx[id]
	if !ok {
		return UnknownName
	}
	return t.Name
}
