package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /games", handler.ListGames)
	mux.HandleFunc("GET /games/{gameID}", handler.GetGame)
	mux.HandleFunc("GET /games/{gameID}/pbp", handler.GetGamePBP)
	mux.HandleFunc("GET /games/{gameID}/social", handler.ListGameSocial)
	mux.HandleFunc("GET /games/{gameID}/recap", handler.GetGameRecap)
	mux.HandleFunc("GET /games/{gameID}/recap/availability", handler.GetGameRecapAvailability)
	mux.HandleFunc("GET /games/{gameID}/odds", handler.ListGameOdds)
	mux.HandleFunc("GET /api/social/accounts", handler.ListSocialAccounts)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /internal/jobs/collect-social", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCollectSocialJob)))
	mux.Handle("POST /internal/jobs/sync-schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncScheduleJob)))
	mux.Handle("POST /internal/jobs/sync-live", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncLiveJob)))
	mux.Handle("POST /internal/jobs/backfill-validate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBackfillValidateJob)))
	mux.Handle("POST /internal/jobs/sync-odds", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncOddsJob)))
	mux.Handle("POST /internal/jobs/reclassify-post", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReclassifyPostJob)))
}
