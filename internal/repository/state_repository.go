package repository

import (
	"context"

	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/session"
)

// StateRepository persists the whole session so it can be restored exactly:
// same ids, ratings, timestamps, outcomes and roster/log order.
type StateRepository interface {
	Load(ctx context.Context, defaults rating.Config) (*session.State, error)
	SaveRoster(ctx context.Context, players []models.Player) error
	AppendMatch(ctx context.Context, match models.Match, players []models.Player) error
	Reset(ctx context.Context, players []models.Player) error
	Replace(ctx context.Context, state *session.State) error
	SaveSettings(ctx context.Context, cfg rating.Config) error
}

// MatchRepository serves filtered, paged reads of the match log.
type MatchRepository interface {
	Get(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context, filter models.MatchFilter) ([]models.Match, error)
	Count(ctx context.Context, filter models.MatchFilter) (int, error)
}
