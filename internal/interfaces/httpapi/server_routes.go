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

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/ladder", handler.ListLadderOverview)
	mux.HandleFunc("GET /v1/ladder/divisions/{division}", handler.ListLadderStandings)
	mux.HandleFunc("GET /v1/ladder/players/{playerID}", handler.GetLadderPlayer)
	mux.HandleFunc("GET /v1/ladder/eligibility", handler.CheckLadderEligibility)
	mux.HandleFunc("GET /v1/challenges", handler.ListChallenges)
	mux.HandleFunc("GET /v1/challenges/{challengeID}", handler.GetChallenge)
	mux.HandleFunc("GET /v1/challenges/{challengeID}/payments", handler.ListChallengePayments)
	mux.HandleFunc("GET /v1/venues", handler.ListVenues)
	mux.HandleFunc("GET /v1/venues/standings", handler.ListHallStandings)
	mux.HandleFunc("GET /v1/venues/{venueID}", handler.GetVenue)
	mux.HandleFunc("GET /v1/games", handler.ListOpenGames)
	mux.HandleFunc("GET /v1/games/{gameID}", handler.GetGame)
	mux.HandleFunc("GET /v1/settlement/quote", handler.QuoteSettlement)
	mux.HandleFunc("GET /v1/memberships", handler.ListMembershipBenefits)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedLadderRoutes(mux, handler, verifier)
	registerAuthorizedChallengeRoutes(mux, handler, verifier)
	registerAuthorizedVenueRoutes(mux, handler, verifier)
	registerAuthorizedGameRoutes(mux, handler, verifier)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/bootstrap", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBootstrapJob)))
	mux.Handle("POST /v1/internal/jobs/expire-challenge", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunExpireChallengeJob)))
	mux.Handle("POST /v1/internal/jobs/expire-challenges", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunExpirySweepJob)))
	mux.Handle("POST /v1/internal/jobs/flush-payments", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPaymentFlushJob)))
	mux.Handle("GET /v1/internal/jobs/dispatches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListJobDispatches)))
}

func registerAuthorizedLadderRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/ladder/players", RequireAuth(verifier, http.HandlerFunc(handler.RegisterLadderPlayer)))
	mux.Handle("POST /v1/ladder/players/me/membership", RequireAuth(verifier, http.HandlerFunc(handler.SyncMyMembership)))
	mux.Handle("POST /v1/ladder/players/{playerID}/respect", RequireAuth(verifier, http.HandlerFunc(handler.AwardRespect)))
}

func registerAuthorizedChallengeRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/challenges", RequireAuth(verifier, http.HandlerFunc(handler.CreateChallenge)))
	mux.Handle("POST /v1/challenges/{challengeID}/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptChallenge)))
	mux.Handle("POST /v1/challenges/{challengeID}/start", RequireAuth(verifier, http.HandlerFunc(handler.StartChallenge)))
	mux.Handle("POST /v1/challenges/{challengeID}/complete", RequireAuth(verifier, http.HandlerFunc(handler.CompleteChallenge)))
	mux.Handle("POST /v1/challenges/{challengeID}/cancel", RequireAuth(verifier, http.HandlerFunc(handler.CancelChallenge)))
	mux.Handle("POST /v1/challenges/{challengeID}/void", RequireAuth(verifier, http.HandlerFunc(handler.VoidChallenge)))
	mux.Handle("PUT /v1/challenges/{challengeID}/stake", RequireAuth(verifier, http.HandlerFunc(handler.UpdateChallengeStake)))
}

func registerAuthorizedVenueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/venues", RequireAuth(verifier, http.HandlerFunc(handler.CreateVenue)))
	mux.Handle("POST /v1/venues/{venueID}/unlock", RequireAuth(verifier, http.HandlerFunc(handler.UnlockVenueBattles)))
	mux.Handle("POST /v1/venues/{venueID}/lock", RequireAuth(verifier, http.HandlerFunc(handler.LockVenueBattles)))
	mux.Handle("GET /v1/venues/{venueID}/audit", RequireAuth(verifier, http.HandlerFunc(handler.ListVenueAudit)))
}

func registerAuthorizedGameRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/games", RequireAuth(verifier, http.HandlerFunc(handler.CreateGame)))
	mux.Handle("POST /v1/games/{gameID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinGame)))
	mux.Handle("POST /v1/games/{gameID}/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveGame)))
	mux.Handle("POST /v1/games/{gameID}/complete", RequireAuth(verifier, http.HandlerFunc(handler.CompleteGame)))
}
