package services

import (
	"context"

	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rotation"
)

// RotationService answers "who should this player fight next"
type RotationService interface {
	Remaining(ctx context.Context, playerID string) (models.Rotation, error)
	All(ctx context.Context) []models.Rotation
}

type rotationService struct {
	sessions SessionService
}

// NewRotationService creates a new RotationService
func NewRotationService(sessions SessionService) RotationService {
	return &rotationService{sessions: sessions}
}

func (s *rotationService) Remaining(ctx context.Context, playerID string) (models.Rotation, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing rotation: player_id=%s", playerID)

	st := s.sessions.State(ctx)
	if _, ok := st.Player(playerID); !ok {
		return models.Rotation{}, errors.ErrPlayerNotFound.WithID(playerID)
	}
	r := rotation.RemainingOpponents(playerID, st.Players, st.Matches)
	log.Debug("rotation: round=%d, remaining=%d", r.Round, len(r.Opponents))
	return r, nil
}

// All returns the rotation of every player in roster order.
func (s *rotationService) All(ctx context.Context) []models.Rotation {
	st := s.sessions.State(ctx)
	out := make([]models.Rotation, 0, len(st.Players))
	for _, p := range st.Players {
		out = append(out, rotation.RemainingOpponents(p.ID, st.Players, st.Matches))
	}
	return out
}
