package services

import (
	"context"
	"database/sql"

	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/repository"
)

// HistoryService serves filtered, paged views of the persisted match log
type HistoryService interface {
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, filter models.MatchFilter) ([]models.Match, int, error)
}

type historyService struct {
	matchRepo repository.MatchRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(matchRepo repository.MatchRepository) HistoryService {
	return &historyService{matchRepo: matchRepo}
}

func (s *historyService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting match: id=%s", id)

	m, err := s.matchRepo.Get(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("match", id)
		}
		log.Error("failed to get match: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if m == nil {
		return nil, errors.NewNotFoundError("match", id)
	}
	return m, nil
}

func (s *historyService) ListMatches(ctx context.Context, filter models.MatchFilter) ([]models.Match, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing matches with filter: player_id=%s, outcome=%s", filter.PlayerID, filter.Outcome)

	if filter.Outcome != "" && !filter.Outcome.Valid() {
		return nil, 0, errors.NewValidationError("outcome", "unknown outcome")
	}

	matches, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list matches: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	total, err := s.matchRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count matches: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	return matches, total, nil
}
