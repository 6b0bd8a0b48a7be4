package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/duelrank/internal/logger"
)

type playerRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.SessionService.Players(r.Context()))
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.SessionService.Player(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	p, err := s.SessionService.AddPlayer(r.Context(), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, p)
}

func (s *Server) handleRenamePlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	p, err := s.SessionService.RenamePlayer(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.SessionService.RemovePlayer(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("player removed: id=%s", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlayerRotation(w http.ResponseWriter, r *http.Request) {
	rot, err := s.RotationService.Remaining(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rot)
}

func (s *Server) handleRotations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.RotationService.All(r.Context()))
}
