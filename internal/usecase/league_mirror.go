package usecase

import (
	"sync"

	"github.com/riskibarqy/starleague/internal/domain/content"
	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/site"
	"github.com/riskibarqy/starleague/internal/domain/team"
)

// MirrorState is an immutable view of the mirror. Slices are shared with the mirror and must not
// be modified; the mirror replaces them wholesale instead of editing them in place.
type MirrorState struct {
	Version  uint64
	Teams    []team.Team
	Matches  []fixture.Match
	Site     site.Config
	Slider   site.SliderSettings
	News     []content.News
	Slides   []content.Slide
	Videos   []content.Video
	Partners []content.Partner
	Players  []content.Player
}

// LeagueMirror holds the in-memory copy of the remote league data. Only LeagueSession mutates it.
type LeagueMirror struct {
	mu    sync.RWMutex
	state MirrorState
}

func NewLeagueMirror() *LeagueMirror {
	return &LeagueMirror{state: emptyMirrorState()}
}

func emptyMirrorState() MirrorState {
	return MirrorState{
		Teams:    []team.Team{},
		Matches:  []fixture.Match{},
		Site:     site.DefaultConfig(),
		Slider:   site.DefaultSliderSettings(),
		News:     []content.News{},
		Slides:   []content.Slide{},
		Videos:   []content.Video{},
		Partners: []content.Partner{},
		Players:  []content.Player{},
	}
}

func (m *LeagueMirror) State() MirrorState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *LeagueMirror) Teams() []team.Team {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Teams
}

func (m *LeagueMirror) Matches() []fixture.Match {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Matches
}

func (m *LeagueMirror) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Version
}

// Count returns the number of records held for a collection path.
func (m *LeagueMirror) Count(collection string) int {
	s := m.State()
	switch collection {
	case team.Collection:
		return len(s.Teams)
	case fixture.Collection:
		return len(s.Matches)
	case content.NewsCollection:
		return len(s.News)
	case content.SlidesCollection:
		return len(s.Slides)
	case content.VideosCollection:
		return len(s.Videos)
	case content.PartnersCollection:
		return len(s.Partners)
	case content.PlayersCollection:
		return len(s.Players)
	case site.Collection, site.SliderCollection:
		return 1
	default:
		return 0
	}
}

// apply mutates a copy of the state and publishes it with a new version.
func (m *LeagueMirror) apply(fn func(*MirrorState)) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state
	fn(&next)
	next.Version = m.state.Version + 1
	m.state = next
	return next.Version
}

func (m *LeagueMirror) setTeams(teams []team.Team) uint64 {
	return m.apply(func(s *MirrorState) { s.Teams = nonNil(teams) })
}

func (m *LeagueMirror) setMatches(matches []fixture.Match) uint64 {
	return m.apply(func(s *MirrorState) { s.Matches = nonNil(matches) })
}

func (m *LeagueMirror) setSite(cfg site.Config) uint64 {
	return m.apply(func(s *MirrorState) { s.Site = cfg })
}

func (m *LeagueMirror) setSlider(settings site.SliderSettings) uint64 {
	return m.apply(func(s *MirrorState) { s.Slider = settings })
}

func (m *LeagueMirror) setNews(items []content.News) uint64 {
	return m.apply(func(s *MirrorState) { s.News = nonNil(items) })
}

func (m *LeagueMirror) setSlides(items []content.Slide) uint64 {
	return m.apply(func(s *MirrorState) { s.Slides = nonNil(items) })
}

func (m *LeagueMirror) setVideos(items []content.Video) uint64 {
	return m.apply(func(s *MirrorState) { s.Videos = nonNil(items) })
}

func (m *LeagueMirror) setPartners(items []content.Partner) uint64 {
	return m.apply(func(s *MirrorState) { s.Partners = nonNil(items) })
}

func (m *LeagueMirror) setPlayers(items []content.Player) uint64 {
	return m.apply(func(s *MirrorState) { s.Players = nonNil(items) })
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
