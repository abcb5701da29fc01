package content

import (
	"strings"
	"unicode"
)

const (
	NewsCollection     = "news"
	SlidesCollection   = "slides"
	VideosCollection   = "videos"
	PartnersCollection = "partners"
	PlayersCollection  = "players"
)

type News struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Image string `json:"image"`
	Body  string `json:"body"`
}

type Slide struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Video struct {
	ID    string `json:"id"`
	Embed string `json:"embed"`
}

type Partner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TeamID        string `json:"teamId"`
	Club          string `json:"club"`
	Category      string `json:"category"`
	Position      string `json:"position"`
	Photo         string `json:"photo"`
	LicenseNumber string `json:"licenseNumber"`
}

// DisplayID is the public license code: club initial, name initial, then the digits of the id
// padded to four.
func (p Player) DisplayID() string {
	club := initial(p.Club)
	name := initial(p.Name)

	var digits strings.Builder
	for _, r := range p.ID {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 4 {
		d = strings.Repeat("0", 4-len(d)) + d
	}
	return club + name + d
}

func initial(v string) string {
	for _, r := range strings.TrimSpace(v) {
		return strings.ToUpper(string(r))
	}
	return "X"
}

// PlayersByTeam keeps the players registered to teamID in input order.
func PlayersByTeam(players []Player, teamID string) []Player {
	out := make([]Player, 0)
	for _, p := range players {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out
}

// FindPlayer matches on id or license number.
func FindPlayer(players []Player, ref string) (Player, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Player{}, false
	}
	for _, p := range players {
		if p.ID == ref || (p.LicenseNumber != "" && p.LicenseNumber == ref) {
			return p, true
		}
	}
	return Player{}, false
}
