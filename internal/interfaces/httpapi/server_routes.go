package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedLeagueRoutes(mux, handler, verifier)
	registerAuthorizedDraftRoutes(mux, handler, verifier)
	registerAuthorizedRosterRoutes(mux, handler, verifier)
	registerAuthorizedWaiverRoutes(mux, handler, verifier)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/bootstrap", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBootstrapJob)))
	mux.Handle("POST /v1/internal/jobs/waivers/resolve", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWaiverResolveJob)))
	mux.Handle("POST /v1/internal/jobs/moves/weekly-reset", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWeeklyResetJob)))
}

func registerAuthorizedLeagueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/teams", RequireAuth(verifier, http.HandlerFunc(handler.ListTeamsByLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/players/available", RequireAuth(verifier, http.HandlerFunc(handler.ListAvailablePlayers)))
	mux.Handle("GET /v1/leagues/{leagueID}/waivers", RequireAuth(verifier, http.HandlerFunc(handler.ListWaiveredPlayers)))
}

func registerAuthorizedDraftRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/draft", RequireAuth(verifier, http.HandlerFunc(handler.GetDraft)))
	mux.Handle("GET /v1/leagues/{leagueID}/draft/available", RequireAuth(verifier, http.HandlerFunc(handler.ListDraftAvailablePlayers)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/start", RequireAuth(verifier, http.HandlerFunc(handler.StartDraft)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/picks", RequireAuth(verifier, http.HandlerFunc(handler.SubmitDraftPick)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/pause", RequireAuth(verifier, http.HandlerFunc(handler.PauseDraft)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/resume", RequireAuth(verifier, http.HandlerFunc(handler.ResumeDraft)))
}

func registerAuthorizedRosterRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/teams/{teamID}", RequireAuth(verifier, http.HandlerFunc(handler.GetTeam)))
	mux.Handle("POST /v1/teams/{teamID}/players", RequireAuth(verifier, http.HandlerFunc(handler.AddPlayer)))
	mux.Handle("DELETE /v1/teams/{teamID}/players/{playerID}", RequireAuth(verifier, http.HandlerFunc(handler.DropPlayer)))
	mux.Handle("PUT /v1/teams/{teamID}/starters", RequireAuth(verifier, http.HandlerFunc(handler.SetStarters)))
}

func registerAuthorizedWaiverRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/teams/{teamID}/waiver-claims", RequireAuth(verifier, http.HandlerFunc(handler.SubmitWaiverClaim)))
	mux.Handle("GET /v1/teams/{teamID}/waiver-claims", RequireAuth(verifier, http.HandlerFunc(handler.ListWaiverClaims)))
	mux.Handle("DELETE /v1/teams/{teamID}/waiver-claims/{claimID}", RequireAuth(verifier, http.HandlerFunc(handler.CancelWaiverClaim)))
}
