package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vytor/duelrank/internal/errors"
)

// defaultCompareKFactors are used when the request names none.
var defaultCompareKFactors = []float64{20, 40, 60}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.LeaderboardService.Leaderboard(r.Context()))
}

func (s *Server) handleRefreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.LeaderboardService.Refresh(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}

func (s *Server) handleOdds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	odds, err := s.LeaderboardService.Odds(r.Context(), q.Get("a"), q.Get("b"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, odds)
}

func (s *Server) handleCompareKFactors(w http.ResponseWriter, r *http.Request) {
	ks := defaultCompareKFactors
	if raw := r.URL.Query().Get("k"); raw != "" {
		ks = ks[:0:0]
		for _, part := range strings.Split(raw, ",") {
			k, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				handleError(w, r, errors.NewValidationError("k", "must be a comma separated list of numbers"))
				return
			}
			ks = append(ks, k)
		}
	}

	out, err := s.LeaderboardService.CompareKFactors(r.Context(), ks)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}
