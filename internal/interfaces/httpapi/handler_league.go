package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/starleague/internal/domain/content"
	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/site"
	"github.com/riskibarqy/starleague/internal/domain/team"
	"github.com/riskibarqy/starleague/internal/usecase"
)

func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.GetSite")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.session.Site())
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, teamsToDTO(h.session.State().Teams))
}

func (h *Handler) ListTeamPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.ListTeamPlayers")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	state := h.session.State()
	if !team.NewIndex(state.Teams).Has(teamID) {
		writeError(ctx, w, fmt.Errorf("%w: team %s", usecase.ErrNotFound, teamID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(content.PlayersByTeam(state.Players, teamID)))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	ref := strings.TrimSpace(r.PathValue("playerRef"))
	player, ok := content.FindPlayer(h.session.State().Players, ref)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player %s", usecase.ErrNotFound, ref))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(player))
}

// ListMatches returns the schedule, or the most recent matches when recent=N is given.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	recent, err := parseOptionalInt(r.URL.Query().Get("recent"), "recent")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	state := h.session.State()
	matches := fixture.Schedule(state.Matches)
	if recent != nil {
		matches = fixture.Recent(state.Matches, *recent)
	}

	writeSuccess(ctx, w, http.StatusOK, fixture.Lines(state.Teams, matches))
}

func (h *Handler) GetNextMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.GetNextMatch")
	defer span.End()

	state := h.session.State()
	next, ok := fixture.NextUpcoming(state.Matches)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no upcoming match", usecase.ErrNotFound))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixture.Lines(state.Teams, []fixture.Match{next})[0])
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.ListResults")
	defer span.End()

	latest, err := parseLimit(r.URL.Query().Get("latest"), defaultResultsLimit, maxResultsLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	state := h.session.State()
	writeSuccess(ctx, w, http.StatusOK, fixture.Lines(state.Teams, fixture.Latest(state.Matches, latest)))
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.session.Derived().Standings)
}

// GetFixtures computes the view for the query's selection. Values that are not available for the
// current data fall back to "all"; the effective selection is part of the response.
func (h *Handler) GetFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.GetFixtures")
	defer span.End()

	query := r.URL.Query()
	round, err := parseOptionalInt(query.Get("round"), "round")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view := h.session.FixtureView(fixture.Selection{
		Category: query.Get("category"),
		Group:    query.Get("group"),
		Round:    round,
	})
	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.GetContent")
	defer span.End()

	collection := strings.TrimSpace(r.PathValue("collection"))
	state := h.session.State()

	var data any
	switch collection {
	case content.NewsCollection:
		data = state.News
	case content.SlidesCollection:
		data = state.Slides
	case content.VideosCollection:
		data = state.Videos
	case content.PartnersCollection:
		data = state.Partners
	case content.PlayersCollection:
		data = playersToDTO(state.Players)
	case site.SliderCollection:
		data = state.Slider
	default:
		writeError(ctx, w, fmt.Errorf("%w: content collection %q", usecase.ErrNotFound, collection))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, data)
}
