package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handleListPlayers)
		r.Post("/players", s.handleCreatePlayer)
		r.Get("/players/{id}", s.handleGetPlayer)
		r.Patch("/players/{id}", s.handleRenamePlayer)
		r.Delete("/players/{id}", s.handleDeletePlayer)
		r.Get("/players/{id}/rotation", s.handlePlayerRotation)
		r.Get("/rotations", s.handleRotations)

		r.Get("/matches", s.handleListMatches)
		r.Post("/matches", s.handleRecordMatch)
		r.Delete("/matches", s.handleClearMatches)
		r.Get("/matches/{id}", s.handleGetMatch)

		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/leaderboard/refresh", s.handleRefreshLeaderboard)
		r.Get("/odds", s.handleOdds)
		r.Get("/compare", s.handleCompareKFactors)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)

		r.Get("/export.csv", s.handleExportCSV)
		r.Post("/import.csv", s.handleImportCSV)
		r.Post("/import/duels", s.handleImportDuels)
		r.Post("/import/sheet", s.handleImportSheet)
	})
	return r
}
