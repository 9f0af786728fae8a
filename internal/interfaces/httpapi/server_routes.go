package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams", handler.ListTeamsByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams/{teamID}/roster", handler.GetTeamRoster)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues/{leagueID}/claims", RequireAuth(verifier, http.HandlerFunc(handler.SubmitClaim)))
	mux.Handle("GET /v1/leagues/{leagueID}/claims", RequireAuth(verifier, http.HandlerFunc(handler.ListTeamClaims)))
	mux.Handle("DELETE /v1/leagues/{leagueID}/claims/{claimID}", RequireAuth(verifier, http.HandlerFunc(handler.CancelClaim)))
	mux.Handle("GET /v1/leagues/{leagueID}/transactions", RequireAuth(verifier, http.HandlerFunc(handler.ListTransactionLog)))
	mux.Handle("POST /v1/leagues/{leagueID}/waivers/process", RequireAuth(verifier, http.HandlerFunc(handler.ProcessWaivers)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/process-waivers", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunProcessWaiversJob)))
}
