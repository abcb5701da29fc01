package httpapi

import (
	"github.com/riskibarqy/starleague/internal/domain/content"
	"github.com/riskibarqy/starleague/internal/domain/team"
	"github.com/riskibarqy/starleague/internal/usecase"
)

type teamRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	City     string `json:"city" validate:"omitempty,max=100"`
	Logo     string `json:"logo"`
	Group    string `json:"group" validate:"omitempty,max=8"`
	Password string `json:"pass" validate:"omitempty,max=100"`
}

func (r teamRequest) input() usecase.TeamInput {
	return usecase.TeamInput{
		Name:     r.Name,
		City:     r.City,
		Logo:     r.Logo,
		Group:    r.Group,
		Password: r.Password,
	}
}

type matchRequest struct {
	HomeID    string `json:"homeId" validate:"required"`
	AwayID    string `json:"awayId" validate:"required,nefield=HomeID"`
	Date      string `json:"date" validate:"required"`
	Time      string `json:"time"`
	Venue     string `json:"venue" validate:"omitempty,max=200"`
	HomeGoals *int   `json:"homeGoals" validate:"omitempty,min=0"`
	AwayGoals *int   `json:"awayGoals" validate:"omitempty,min=0"`
	Category  string `json:"category"`
	Round     int    `json:"round" validate:"min=0"`
}

func (r matchRequest) input() usecase.MatchInput {
	return usecase.MatchInput{
		HomeID:    r.HomeID,
		AwayID:    r.AwayID,
		Date:      r.Date,
		Time:      r.Time,
		Venue:     r.Venue,
		HomeGoals: r.HomeGoals,
		AwayGoals: r.AwayGoals,
		Category:  r.Category,
		Round:     r.Round,
	}
}

type siteRequest struct {
	NameAr        string `json:"nameAr" validate:"omitempty,max=200"`
	NameFr        string `json:"nameFr" validate:"omitempty,max=200"`
	Logo          string `json:"logo"`
	PublicBaseURL string `json:"publicBaseUrl" validate:"omitempty,url"`
}

type playerRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	TeamID   string `json:"teamId" validate:"required"`
	Category string `json:"category"`
	Position string `json:"position" validate:"omitempty,max=40"`
	Photo    string `json:"photo"`
}

// teamDTO never carries the team password.
type teamDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Logo  string `json:"logo"`
	Group string `json:"group"`
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:    v.ID,
		Name:  v.Name,
		City:  v.City,
		Logo:  v.Logo,
		Group: v.GroupLabel(),
	}
}

func teamsToDTO(items []team.Team) []teamDTO {
	out := make([]teamDTO, 0, len(items))
	for _, t := range items {
		out = append(out, teamToDTO(t))
	}
	return out
}

type playerDTO struct {
	content.Player
	DisplayID string `json:"displayId"`
}

func playerToDTO(p content.Player) playerDTO {
	return playerDTO{Player: p, DisplayID: p.DisplayID()}
}

func playersToDTO(items []content.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, p := range items {
		out = append(out, playerToDTO(p))
	}
	return out
}

type registeredPlayerDTO struct {
	Player playerDTO `json:"player"`
	Key    string    `json:"key,omitempty"`
	Queued bool      `json:"queued"`
}

type flushResultDTO struct {
	Flushed   int `json:"flushed"`
	Remaining int `json:"remaining"`
}

type changeEventDTO struct {
	Collection string `json:"collection"`
	Version    uint64 `json:"version"`
	Mode       string `json:"mode"`
}
