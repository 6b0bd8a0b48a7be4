package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/session"
)

// MockStateRepository is a mock implementation of repository.StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Load(ctx context.Context, defaults rating.Config) (*session.State, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.State), args.Error(1)
}

func (m *MockStateRepository) SaveRoster(ctx context.Context, players []models.Player) error {
	args := m.Called(ctx, players)
	return args.Error(0)
}

func (m *MockStateRepository) AppendMatch(ctx context.Context, match models.Match, players []models.Player) error {
	args := m.Called(ctx, match, players)
	return args.Error(0)
}

func (m *MockStateRepository) Reset(ctx context.Context, players []models.Player) error {
	args := m.Called(ctx, players)
	return args.Error(0)
}

func (m *MockStateRepository) Replace(ctx context.Context, state *session.State) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) SaveSettings(ctx context.Context, cfg rating.Config) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}
