package usecase

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/starleague/internal/domain/content"
	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/site"
	"github.com/riskibarqy/starleague/internal/domain/team"
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

// CoreCollections are required for an online session; a failed read of any of them switches the
// session to the local cache.
var CoreCollections = []string{team.Collection, fixture.Collection, site.Collection}

// AuxCollections are loaded best effort and degrade to empty on failure.
var AuxCollections = []string{
	content.NewsCollection,
	content.SlidesCollection,
	content.VideosCollection,
	content.PartnersCollection,
	site.SliderCollection,
	content.PlayersCollection,
}

// ParseAuxCollections validates a configured list of auxiliary collections.
func ParseAuxCollections(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		v := strings.ToLower(strings.TrimSpace(raw))
		if v == "" {
			continue
		}
		if !isAuxCollection(v) {
			return nil, fmt.Errorf("%w: unknown collection %q", ErrInvalidInput, raw)
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

func isAuxCollection(name string) bool {
	for _, c := range AuxCollections {
		if c == name {
			return true
		}
	}
	return false
}

func isCoreCollection(name string) bool {
	for _, c := range CoreCollections {
		if c == name {
			return true
		}
	}
	return false
}

// affectsDerived reports whether a change to collection requires recomputing standings and fixtures.
func affectsDerived(collection string) bool {
	return collection == team.Collection || collection == fixture.Collection
}

// applySnapshot decodes snap and replaces the collection in the mirror. A malformed snapshot
// still replaces the collection (with an empty or default value) and returns the decode error.
func (s *LeagueSession) applySnapshot(collection string, snap snapshot.Snapshot) error {
	switch collection {
	case team.Collection:
		teams, err := team.Decode(snap)
		s.mirror.setTeams(teams)
		return err
	case fixture.Collection:
		matches, err := fixture.Decode(snap)
		s.mirror.setMatches(matches)
		return err
	case site.Collection:
		cfg, err := site.DecodeConfig(snap)
		s.mirror.setSite(cfg)
		return err
	case site.SliderCollection:
		settings, err := site.DecodeSliderSettings(snap)
		s.mirror.setSlider(settings)
		return err
	case content.NewsCollection:
		items, err := content.DecodeNews(snap)
		s.mirror.setNews(items)
		return err
	case content.SlidesCollection:
		items, err := content.DecodeSlides(snap)
		s.mirror.setSlides(items)
		return err
	case content.VideosCollection:
		items, err := content.DecodeVideos(snap)
		s.mirror.setVideos(items)
		return err
	case content.PartnersCollection:
		items, err := content.DecodePartners(snap)
		s.mirror.setPartners(items)
		return err
	case content.PlayersCollection:
		items, err := content.DecodePlayers(snap)
		s.mirror.setPlayers(items)
		return err
	default:
		return fmt.Errorf("%w: unknown collection %q", ErrInvalidInput, collection)
	}
}

// cacheValue is the canonical form of a core collection written to the local cache.
func cacheValue(state MirrorState, collection string) (any, bool) {
	switch collection {
	case team.Collection:
		return team.RemoteCollection(state.Teams), true
	case fixture.Collection:
		return fixture.RemoteCollection(state.Matches), true
	case site.Collection:
		return state.Site, true
	default:
		return nil, false
	}
}
