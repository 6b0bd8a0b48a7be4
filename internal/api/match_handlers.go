package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/models"
)

type recordMatchRequest struct {
	Player1ID string         `json:"player1_id"`
	Player2ID string         `json:"player2_id"`
	Outcome   models.Outcome `json:"outcome"`
}

type matchPage struct {
	Matches []models.Match `json:"matches"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

func (s *Server) handleRecordMatch(w http.ResponseWriter, r *http.Request) {
	var req recordMatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	m, err := s.SessionService.RecordMatch(r.Context(), req.Player1ID, req.Player2ID, req.Outcome)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, m)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.MatchFilter{
		PlayerID: q.Get("player"),
		Outcome:  models.Outcome(q.Get("outcome")),
		OrderDir: strings.ToUpper(q.Get("order")),
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 50); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Since, err = queryTime(r, "since"); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Until, err = queryTime(r, "until"); err != nil {
		handleError(w, r, err)
		return
	}

	matches, total, err := s.HistoryService.ListMatches(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, matchPage{
		Matches: matches,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.HistoryService.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, m)
}

// handleClearMatches wipes the log and resets every player. It refuses to run
// without confirm=true.
func (s *Server) handleClearMatches(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		handleError(w, r, errors.NewConfirmationError("clearing match history"))
		return
	}
	if err := s.SessionService.ClearHistory(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
