package services

import (
	"context"
	"fmt"
	"math"

	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/leaderboard"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/session"
)

// MaxCompareKFactors bounds how many replays one comparison may run.
const MaxCompareKFactors = 10

// LeaderboardService handles ranking and pairing odds
type LeaderboardService interface {
	Leaderboard(ctx context.Context) []models.LeaderboardRow
	Refresh(ctx context.Context) ([]models.LeaderboardRow, error)
	Odds(ctx context.Context, playerAID, playerBID string) (models.Odds, error)
	CompareKFactors(ctx context.Context, ks []float64) ([]models.KFactorComparison, error)
}

type leaderboardService struct {
	sessions SessionService
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(sessions SessionService) LeaderboardService {
	return &leaderboardService{sessions: sessions}
}

func (s *leaderboardService) Leaderboard(ctx context.Context) []models.LeaderboardRow {
	st := s.sessions.State(ctx)
	snap := models.SnapshotFromPlayers(st.Players)
	rows := leaderboard.Rank(st.Players, st.Matches, snap, st.Rating.InitialRating())
	logger.FromContext(ctx).Debug("ranked %d players (frozen=%t)", len(rows), len(snap.CurrentRanks) > 0)
	return rows
}

// Refresh moves the frozen display to the live standings and returns the new board.
func (s *leaderboardService) Refresh(ctx context.Context) ([]models.LeaderboardRow, error) {
	log := logger.FromContext(ctx)
	log.Info("refreshing leaderboard")

	if err := s.sessions.FreezeLeaderboard(ctx); err != nil {
		log.Error("failed to refresh leaderboard: %v", err)
		return nil, err
	}
	return s.Leaderboard(ctx), nil
}

func (s *leaderboardService) Odds(ctx context.Context, playerAID, playerBID string) (models.Odds, error) {
	if playerAID == "" || playerBID == "" {
		return models.Odds{}, errors.ErrMissingSelection
	}
	if playerAID == playerBID {
		return models.Odds{}, errors.ErrSamePlayer
	}

	st := s.sessions.State(ctx)
	a, ok := st.Player(playerAID)
	if !ok {
		return models.Odds{}, errors.ErrPlayerNotFound.WithID(playerAID)
	}
	b, ok := st.Player(playerBID)
	if !ok {
		return models.Odds{}, errors.ErrPlayerNotFound.WithID(playerBID)
	}
	return rating.Odds(a, b, st.Rating.KFactor), nil
}

// CompareKFactors replays the recorded matches, in log order, from initial
// ratings once per K factor and returns the final standings of each run. The
// live session is not touched.
func (s *leaderboardService) CompareKFactors(ctx context.Context, ks []float64) ([]models.KFactorComparison, error) {
	log := logger.FromContext(ctx)

	if len(ks) == 0 {
		return nil, errors.NewValidationError("k", "at least one K factor is required")
	}
	if len(ks) > MaxCompareKFactors {
		return nil, errors.NewValidationError("k", fmt.Sprintf("at most %d K factors", MaxCompareKFactors))
	}
	for _, k := range ks {
		if math.IsNaN(k) || math.IsInf(k, 0) || k < 0 {
			return nil, errors.NewValidationError("k", "must be a finite number >= 0")
		}
	}

	st := s.sessions.State(ctx)
	rec := session.NewRecorder(nil, nil)
	out := make([]models.KFactorComparison, 0, len(ks))
	for _, k := range ks {
		standings, err := replay(rec, st, k)
		if err != nil {
			log.Error("replay with k=%g failed: %v", k, err)
			return nil, appError(err)
		}
		out = append(out, models.KFactorComparison{KFactor: k, Standings: standings})
	}
	log.Debug("compared %d K factors over %d matches", len(ks), len(st.Matches))
	return out, nil
}

// replay runs every match of live through a fresh state rated with k. Players
// removed from the roster still take part so their opponents are rated the
// same way, but only roster players are listed.
func replay(rec *session.Recorder, live *session.State, k float64) ([]models.Standing, error) {
	sim := session.NewState(rating.Config{KFactor: k, Initial: live.Rating.Initial})
	onRoster := make(map[string]bool, len(live.Players))
	for _, p := range live.Players {
		onRoster[p.ID] = true
		sim.Players = append(sim.Players, freshPlayer(p.ID, p.Name, sim.Rating.InitialRating()))
	}
	for _, m := range live.Matches {
		for _, slot := range [][2]string{{m.Player1ID, m.Player1Name}, {m.Player2ID, m.Player2Name}} {
			if models.FindPlayer(sim.Players, slot[0]) < 0 {
				sim.Players = append(sim.Players, freshPlayer(slot[0], slot[1], sim.Rating.InitialRating()))
			}
		}
		if _, err := rec.Record(sim, m.Player1ID, m.Player2ID, m.Outcome); err != nil {
			return nil, fmt.Errorf("match %s: %w", m.ID, err)
		}
	}

	standings := make([]models.Standing, 0, len(live.Players))
	for _, idx := range leaderboard.LiveOrder(sim.Players) {
		p := sim.Players[idx]
		if !onRoster[p.ID] {
			continue
		}
		standings = append(standings, models.Standing{
			Position: len(standings) + 1,
			PlayerID: p.ID,
			Name:     p.Name,
			Rating:   p.Rating,
			Wins:     p.Wins,
			Losses:   p.Losses,
			Draws:    p.Draws,
		})
	}
	return standings, nil
}

func freshPlayer(id, name string, initial int) models.Player {
	return models.Player{ID: id, Name: name, Rating: initial, StreakType: models.StreakNone}
}
