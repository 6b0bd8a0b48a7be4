package api

import (
	"net/http"

	"github.com/vytor/duelrank/internal/errors"
)

type settingsRequest struct {
	KFactor *float64 `json:"k_factor"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.SessionService.Settings(r.Context()))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.KFactor == nil {
		handleError(w, r, errors.NewValidationError("k_factor", "is required"))
		return
	}

	cfg, err := s.SessionService.SetKFactor(r.Context(), *req.KFactor)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cfg)
}
