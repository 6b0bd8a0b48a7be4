package session

import (
	"fmt"
	"strings"

	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/leaderboard"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/streak"
)

// Recorder is the only code path that writes player aggregates or appends to
// the match log.
type Recorder struct {
	ids   IDGenerator
	clock Clock
}

func NewRecorder(ids IDGenerator, clock Clock) *Recorder {
	if ids == nil {
		ids = DefaultIDs{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Recorder{ids: ids, clock: clock}
}

// Record validates the request, rates the match with the session's current K
// factor, appends it to the log and updates both players. All preconditions
// are checked before anything is touched; on error the state is unchanged.
func (r *Recorder) Record(s *State, player1ID, player2ID string, outcome models.Outcome) (models.Match, error) {
	switch {
	case player1ID == "" || player2ID == "":
		return models.Match{}, errors.ErrMissingSelection
	case player1ID == player2ID:
		return models.Match{}, errors.ErrSamePlayer
	case !outcome.Valid():
		return models.Match{}, errors.ErrMissingOutcome
	}

	i1 := models.FindPlayer(s.Players, player1ID)
	if i1 < 0 {
		return models.Match{}, errors.ErrPlayerNotFound.WithID(player1ID)
	}
	i2 := models.FindPlayer(s.Players, player2ID)
	if i2 < 0 {
		return models.Match{}, errors.ErrPlayerNotFound.WithID(player2ID)
	}

	id, err := r.ids.NewMatchID()
	if err != nil {
		return models.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	p1, p2 := &s.Players[i1], &s.Players[i2]
	after1, after2 := rating.CalculateNewRatings(p1.Rating, p2.Rating, outcome, s.Rating.KFactor)

	m := models.Match{
		ID:                  id,
		PlayedAt:            r.clock.Now(),
		Player1ID:           p1.ID,
		Player1Name:         p1.Name,
		Player2ID:           p2.ID,
		Player2Name:         p2.Name,
		Player1RatingBefore: p1.Rating,
		Player2RatingBefore: p2.Rating,
		Player1RatingAfter:  after1,
		Player2RatingAfter:  after2,
		Player1Delta:        after1 - p1.Rating,
		Player2Delta:        after2 - p2.Rating,
		Outcome:             outcome,
	}
	s.Matches = append(s.Matches, m)

	p1.Rating, p1.LastRatingChange = after1, m.Player1Delta
	p2.Rating, p2.LastRatingChange = after2, m.Player2Delta
	switch outcome {
	case models.OutcomePlayer1Win:
		p1.Wins++
		p2.Losses++
	case models.OutcomePlayer2Win:
		p1.Losses++
		p2.Wins++
	case models.OutcomeDraw:
		p1.Draws++
		p2.Draws++
	}

	streak.Compute(s.Players, s.Matches)
	return m, nil
}

// ClearHistory empties the log and puts every player back to the initial
// rating with no record, streak or display snapshot. Callers must have
// obtained confirmation first.
func (r *Recorder) ClearHistory(s *State) {
	s.Matches = s.Matches[:0:0]
	initial := s.Rating.InitialRating()
	for i := range s.Players {
		p := &s.Players[i]
		p.Rating = initial
		p.Wins, p.Losses, p.Draws = 0, 0, 0
		p.LastRatingChange = 0
		p.StreakType, p.StreakLength = models.StreakNone, 0
		p.FrozenRank, p.FrozenRating = 0, 0
		p.PreviousRank, p.PreviousRating = 0, 0
	}
}

// AddPlayer appends a new player seeded with the initial rating.
func (r *Recorder) AddPlayer(s *State, name string) (models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, errors.ErrInvalidName
	}
	id, err := r.ids.NewPlayerID()
	if err != nil {
		return models.Player{}, fmt.Errorf("generate player id: %w", err)
	}
	p := models.Player{
		ID:         id,
		Name:       name,
		Rating:     s.Rating.InitialRating(),
		StreakType: models.StreakNone,
		CreatedAt:  r.clock.Now(),
	}
	s.Players = append(s.Players, p)
	return p, nil
}

// RenamePlayer changes a display name. Past matches keep the name they were
// recorded with.
func (r *Recorder) RenamePlayer(s *State, id, name string) (models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, errors.ErrInvalidName
	}
	i := models.FindPlayer(s.Players, id)
	if i < 0 {
		return models.Player{}, errors.ErrPlayerNotFound.WithID(id)
	}
	s.Players[i].Name = name
	return s.Players[i], nil
}

// RemovePlayer drops a player from the roster. Their matches stay in the log.
func (r *Recorder) RemovePlayer(s *State, id string) error {
	i := models.FindPlayer(s.Players, id)
	if i < 0 {
		return errors.ErrPlayerNotFound.WithID(id)
	}
	s.Players = append(s.Players[:i], s.Players[i+1:]...)
	return nil
}

// SetKFactor changes the sensitivity used by future recordings only.
func (r *Recorder) SetKFactor(s *State, k float64) {
	s.Rating.KFactor = k
}

// FreezeLeaderboard rotates the display snapshot: what was frozen becomes the
// previous snapshot and the live order becomes the new frozen one.
func (r *Recorder) FreezeLeaderboard(s *State) {
	ranks, ratings := leaderboard.Capture(s.Players)
	for i := range s.Players {
		p := &s.Players[i]
		p.PreviousRank, p.PreviousRating = p.FrozenRank, p.FrozenRating
		p.FrozenRank, p.FrozenRating = ranks[p.ID], ratings[p.ID]
	}
}
