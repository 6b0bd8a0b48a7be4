package services

import (
	"context"
	stderrors "errors"
	"math"
	"sync"

	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/repository"
	"github.com/vytor/duelrank/internal/session"
)

// SessionService owns the live session and is its only writer. Every mutation
// runs on a copy, is persisted, and only then replaces the live state.
type SessionService interface {
	State(ctx context.Context) *session.State
	Players(ctx context.Context) []models.Player
	Player(ctx context.Context, id string) (models.Player, error)
	AddPlayer(ctx context.Context, name string) (models.Player, error)
	RenamePlayer(ctx context.Context, id, name string) (models.Player, error)
	RemovePlayer(ctx context.Context, id string) error
	RecordMatch(ctx context.Context, player1ID, player2ID string, outcome models.Outcome) (models.Match, error)
	ClearHistory(ctx context.Context) error
	Matches(ctx context.Context) []models.Match
	Settings(ctx context.Context) rating.Config
	SetKFactor(ctx context.Context, k float64) (rating.Config, error)
	FreezeLeaderboard(ctx context.Context) error
	Replace(ctx context.Context, next *session.State) error
}

type sessionService struct {
	mu       sync.RWMutex
	state    *session.State
	repo     repository.StateRepository
	recorder *session.Recorder
}

// NewSessionService creates a new SessionService around an already loaded state
func NewSessionService(state *session.State, repo repository.StateRepository, recorder *session.Recorder) SessionService {
	if recorder == nil {
		recorder = session.NewRecorder(nil, nil)
	}
	return &sessionService{state: state, repo: repo, recorder: recorder}
}

// mutate applies change to a copy of the live state, persists the copy and
// swaps it in. On any error the live state is left as it was.
func (s *sessionService) mutate(ctx context.Context, change func(*session.State) error, persist func(context.Context, *session.State) error) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := change(next); err != nil {
		return appError(err)
	}
	if err := persist(ctx, next); err != nil {
		log.Error("failed to persist session: %v", err)
		return errors.NewInternalError(err)
	}
	s.state = next
	return nil
}

func (s *sessionService) read() *session.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *sessionService) State(ctx context.Context) *session.State {
	return s.read()
}

func (s *sessionService) Players(ctx context.Context) []models.Player {
	return s.read().Players
}

func (s *sessionService) Player(ctx context.Context, id string) (models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.Player(id)
	if !ok {
		return models.Player{}, errors.ErrPlayerNotFound.WithID(id)
	}
	return p, nil
}

func (s *sessionService) AddPlayer(ctx context.Context, name string) (models.Player, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding player: name=%s", name)

	var added models.Player
	err := s.mutate(ctx, func(next *session.State) error {
		p, err := s.recorder.AddPlayer(next, name)
		added = p
		return err
	}, s.saveRoster)
	if err != nil {
		return models.Player{}, err
	}
	log.Info("player added: id=%s, name=%s", added.ID, added.Name)
	return added, nil
}

func (s *sessionService) RenamePlayer(ctx context.Context, id, name string) (models.Player, error) {
	log := logger.FromContext(ctx)
	log.Debug("renaming player: id=%s, name=%s", id, name)

	var renamed models.Player
	err := s.mutate(ctx, func(next *session.State) error {
		p, err := s.recorder.RenamePlayer(next, id, name)
		renamed = p
		return err
	}, s.saveRoster)
	if err != nil {
		return models.Player{}, err
	}
	return renamed, nil
}

func (s *sessionService) RemovePlayer(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("removing player: id=%s", id)

	return s.mutate(ctx, func(next *session.State) error {
		return s.recorder.RemovePlayer(next, id)
	}, s.saveRoster)
}

func (s *sessionService) RecordMatch(ctx context.Context, player1ID, player2ID string, outcome models.Outcome) (models.Match, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording match: player1=%s, player2=%s, outcome=%s", player1ID, player2ID, outcome)

	var recorded models.Match
	err := s.mutate(ctx, func(next *session.State) error {
		m, err := s.recorder.Record(next, player1ID, player2ID, outcome)
		recorded = m
		return err
	}, func(ctx context.Context, next *session.State) error {
		return s.repo.AppendMatch(ctx, recorded, next.Players)
	})
	if err != nil {
		log.Debug("match rejected: %v", err)
		return models.Match{}, err
	}

	log.WithField("match_id", recorded.ID).Info("match recorded: %s %+d, %s %+d",
		recorded.Player1Name, recorded.Player1Delta, recorded.Player2Name, recorded.Player2Delta)
	return recorded, nil
}

func (s *sessionService) ClearHistory(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("clearing match history")

	return s.mutate(ctx, func(next *session.State) error {
		s.recorder.ClearHistory(next)
		return nil
	}, func(ctx context.Context, next *session.State) error {
		return s.repo.Reset(ctx, next.Players)
	})
}

func (s *sessionService) Matches(ctx context.Context) []models.Match {
	return s.read().Matches
}

func (s *sessionService) Settings(ctx context.Context) rating.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Rating
}

func (s *sessionService) SetKFactor(ctx context.Context, k float64) (rating.Config, error) {
	log := logger.FromContext(ctx)
	log.Debug("setting k factor: %g", k)

	if math.IsNaN(k) || math.IsInf(k, 0) || k < 0 {
		return rating.Config{}, errors.NewValidationError("k_factor", "must be a finite number >= 0")
	}

	var cfg rating.Config
	err := s.mutate(ctx, func(next *session.State) error {
		s.recorder.SetKFactor(next, k)
		cfg = next.Rating
		return nil
	}, func(ctx context.Context, next *session.State) error {
		return s.repo.SaveSettings(ctx, next.Rating)
	})
	if err != nil {
		return rating.Config{}, err
	}
	log.Info("k factor set to %g", cfg.KFactor)
	return cfg, nil
}

func (s *sessionService) FreezeLeaderboard(ctx context.Context) error {
	logger.FromContext(ctx).Debug("freezing leaderboard snapshot")

	return s.mutate(ctx, func(next *session.State) error {
		s.recorder.FreezeLeaderboard(next)
		return nil
	}, s.saveRoster)
}

func (s *sessionService) Replace(ctx context.Context, next *session.State) error {
	log := logger.FromContext(ctx)
	log.Info("replacing session: players=%d, matches=%d", len(next.Players), len(next.Matches))

	return s.mutate(ctx, func(st *session.State) error {
		*st = *next.Clone()
		return nil
	}, s.repo.Replace)
}

func (s *sessionService) saveRoster(ctx context.Context, next *session.State) error {
	return s.repo.SaveRoster(ctx, next.Players)
}

// appError passes domain errors through and wraps anything else as internal.
func appError(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewInternalError(err)
}
