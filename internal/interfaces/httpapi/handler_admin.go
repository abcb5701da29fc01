package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/starleague/internal/usecase"
)

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	var req teamRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.session.CreateTeam(ctx, req.input())
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(item))
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.UpdateTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	var req teamRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.session.UpdateTeam(ctx, teamID, req.input())
	if err != nil {
		h.logger.WarnContext(ctx, "update team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(item))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if err := h.session.DeleteTeam(ctx, teamID); err != nil {
		h.logger.WarnContext(ctx, "delete team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": teamID})
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	var req matchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.session.CreateMatch(ctx, req.input())
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, item)
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.UpdateMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req matchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.session.UpdateMatch(ctx, matchID, req.input())
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.session.DeleteMatch(ctx, matchID); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": matchID})
}

func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.UpdateSite")
	defer span.End()

	var req siteRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	cfg, err := h.session.UpdateSite(ctx, usecase.SiteInput{
		NameAr:        req.NameAr,
		NameFr:        req.NameFr,
		Logo:          req.Logo,
		PublicBaseURL: req.PublicBaseURL,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update site failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cfg)
}

// RegisterPlayer answers 202 when the registration was queued locally instead of pushed.
func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.RegisterPlayer")
	defer span.End()

	var req playerRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	registered, err := h.session.RegisterPlayer(ctx, usecase.PlayerInput{
		Name:     req.Name,
		TeamID:   req.TeamID,
		Category: req.Category,
		Position: req.Position,
		Photo:    req.Photo,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register player failed", "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if registered.Queued {
		status = http.StatusAccepted
	}
	writeSuccess(ctx, w, status, registeredPlayerDTO{
		Player: playerToDTO(registered.Player),
		Key:    registered.Key,
		Queued: registered.Queued,
	})
}

func (h *Handler) ListPendingPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.ListPendingPlayers")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(h.session.PendingPlayers(ctx)))
}

func (h *Handler) FlushPendingPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.FlushPendingPlayers")
	defer span.End()

	flushed, err := h.session.FlushPendingPlayers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "flush pending players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, flushResultDTO{
		Flushed:   flushed,
		Remaining: len(h.session.PendingPlayers(ctx)),
	})
}
