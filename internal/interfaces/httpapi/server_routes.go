package httpapi

import (
	"net/http"

	"github.com/riskibarqy/starleague/internal/platform/metrics"
)

func handle(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, labelRoute(pattern, h))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsManager *metrics.Manager) {
	handle(mux, "GET /healthz", http.HandlerFunc(handler.Healthz))
	handle(mux, "GET /v1/sync/status", http.HandlerFunc(handler.GetSyncStatus))
	handle(mux, "GET /v1/events", http.HandlerFunc(handler.StreamEvents))
	if metricsManager != nil {
		handle(mux, "GET /metrics", metricsManager.Handler())
	}
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	handle(mux, "GET /v1/site", http.HandlerFunc(handler.GetSite))
	handle(mux, "GET /v1/teams", http.HandlerFunc(handler.ListTeams))
	handle(mux, "GET /v1/teams/{teamID}/players", http.HandlerFunc(handler.ListTeamPlayers))
	handle(mux, "GET /v1/matches", http.HandlerFunc(handler.ListMatches))
	handle(mux, "GET /v1/matches/next", http.HandlerFunc(handler.GetNextMatch))
	handle(mux, "GET /v1/results", http.HandlerFunc(handler.ListResults))
	handle(mux, "GET /v1/standings", http.HandlerFunc(handler.ListStandings))
	handle(mux, "GET /v1/fixtures", http.HandlerFunc(handler.GetFixtures))
	handle(mux, "GET /v1/content/{collection}", http.HandlerFunc(handler.GetContent))
	handle(mux, "GET /v1/players/{playerRef}", http.HandlerFunc(handler.GetPlayer))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	admin := func(pattern string, fn http.HandlerFunc) {
		handle(mux, pattern, RequireAdminToken(adminToken, fn))
	}

	admin("POST /v1/teams", handler.CreateTeam)
	admin("PUT /v1/teams/{teamID}", handler.UpdateTeam)
	admin("DELETE /v1/teams/{teamID}", handler.DeleteTeam)
	admin("POST /v1/matches", handler.CreateMatch)
	admin("PUT /v1/matches/{matchID}", handler.UpdateMatch)
	admin("DELETE /v1/matches/{matchID}", handler.DeleteMatch)
	admin("PUT /v1/site", handler.UpdateSite)
	admin("POST /v1/players", handler.RegisterPlayer)
	admin("GET /v1/players/pending", handler.ListPendingPlayers)
	admin("POST /v1/players/pending/flush", handler.FlushPendingPlayers)
}
