package services_test

import (
	"context"
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/services"
	"github.com/vytor/duelrank/internal/session"
	"github.com/vytor/duelrank/internal/testutil"
	"github.com/vytor/duelrank/internal/testutil/mocks"
)

func newSessionService(t *testing.T, names ...string) (services.SessionService, *mocks.MockStateRepository) {
	t.Helper()
	repo := new(mocks.MockStateRepository)
	rec := session.NewRecorder(&testutil.SeqIDs{}, testutil.NewTickClock())
	state := session.NewState(rating.DefaultConfig())
	for _, n := range names {
		_, err := rec.AddPlayer(state, n)
		require.NoError(t, err)
	}
	return services.NewSessionService(state, repo, rec), repo
}

func TestSessionService_AddPlayer(t *testing.T) {
	svc, repo := newSessionService(t)
	ctx := context.Background()

	repo.On("SaveRoster", ctx, mock.MatchedBy(func(ps []models.Player) bool {
		return len(ps) == 1 && ps[0].Name == "Alice"
	})).Return(nil)

	p, err := svc.AddPlayer(ctx, "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, 1200, p.Rating)
	assert.Len(t, svc.Players(ctx), 1)
	repo.AssertExpectations(t)
}

func TestSessionService_AddPlayer_InvalidName(t *testing.T) {
	svc, repo := newSessionService(t)

	_, err := svc.AddPlayer(context.Background(), "   ")
	assert.ErrorIs(t, err, errors.ErrInvalidName)
	repo.AssertNotCalled(t, "SaveRoster", mock.Anything, mock.Anything)
}

func TestSessionService_RecordMatch(t *testing.T) {
	svc, repo := newSessionService(t, "Alice", "Bob")
	ctx := context.Background()
	players := svc.Players(ctx)

	repo.On("AppendMatch", ctx, mock.AnythingOfType("models.Match"), mock.Anything).Return(nil)

	m, err := svc.RecordMatch(ctx, players[0].ID, players[1].ID, models.OutcomePlayer1Win)
	require.NoError(t, err)
	assert.Equal(t, 16, m.Player1Delta)
	assert.Equal(t, -16, m.Player2Delta)

	after := svc.Players(ctx)
	assert.Equal(t, 1216, after[0].Rating)
	assert.Equal(t, 1184, after[1].Rating)
	assert.Len(t, svc.Matches(ctx), 1)

	saved := repo.Calls[0].Arguments.Get(1).(models.Match)
	assert.Equal(t, m, saved)
	repo.AssertExpectations(t)
}

func TestSessionService_RecordMatch_PreconditionLeavesStateAlone(t *testing.T) {
	svc, repo := newSessionService(t, "Alice", "Bob")
	ctx := context.Background()
	alice := svc.Players(ctx)[0].ID

	_, err := svc.RecordMatch(ctx, alice, alice, models.OutcomeDraw)
	assert.ErrorIs(t, err, errors.ErrSamePlayer)

	_, err = svc.RecordMatch(ctx, alice, "ghost", models.OutcomeDraw)
	assert.ErrorIs(t, err, errors.ErrPlayerNotFound)

	assert.Empty(t, svc.Matches(ctx))
	repo.AssertNotCalled(t, "AppendMatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_RecordMatch_StorageFailureLeavesStateAlone(t *testing.T) {
	svc, repo := newSessionService(t, "Alice", "Bob")
	ctx := context.Background()
	before := svc.State(ctx)

	repo.On("AppendMatch", ctx, mock.Anything, mock.Anything).Return(stderrors.New("disk full"))

	_, err := svc.RecordMatch(ctx, before.Players[0].ID, before.Players[1].ID, models.OutcomePlayer2Win)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
	assert.Equal(t, before, svc.State(ctx))
}

func TestSessionService_ClearHistory(t *testing.T) {
	svc, repo := newSessionService(t, "Alice", "Bob")
	ctx := context.Background()
	players := svc.Players(ctx)

	repo.On("AppendMatch", ctx, mock.Anything, mock.Anything).Return(nil)
	repo.On("Reset", ctx, mock.Anything).Return(nil)

	_, err := svc.RecordMatch(ctx, players[0].ID, players[1].ID, models.OutcomePlayer1Win)
	require.NoError(t, err)
	require.NoError(t, svc.ClearHistory(ctx))

	assert.Empty(t, svc.Matches(ctx))
	for _, p := range svc.Players(ctx) {
		assert.Equal(t, 1200, p.Rating)
		assert.Equal(t, 0, p.MatchesPlayed())
		assert.Equal(t, models.StreakNone, p.StreakType)
	}
	repo.AssertExpectations(t)
}

func TestSessionService_SetKFactor(t *testing.T) {
	svc, repo := newSessionService(t)
	ctx := context.Background()

	repo.On("SaveSettings", ctx, rating.Config{KFactor: 24, Initial: 1200}).Return(nil)

	cfg, err := svc.SetKFactor(ctx, 24)
	require.NoError(t, err)
	assert.Equal(t, 24.0, cfg.KFactor)
	assert.Equal(t, 24.0, svc.Settings(ctx).KFactor)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := svc.SetKFactor(ctx, bad)
		assert.Error(t, err)
	}
	assert.Equal(t, 24.0, svc.Settings(ctx).KFactor)
	repo.AssertExpectations(t)
}

func TestSessionService_RemovePlayerKeepsHistory(t *testing.T) {
	svc, repo := newSessionService(t, "Alice", "Bob")
	ctx := context.Background()
	players := svc.Players(ctx)

	repo.On("AppendMatch", ctx, mock.Anything, mock.Anything).Return(nil)
	repo.On("SaveRoster", ctx, mock.Anything).Return(nil)

	_, err := svc.RecordMatch(ctx, players[0].ID, players[1].ID, models.OutcomeDraw)
	require.NoError(t, err)
	require.NoError(t, svc.RemovePlayer(ctx, players[1].ID))

	assert.Len(t, svc.Players(ctx), 1)
	require.Len(t, svc.Matches(ctx), 1)
	assert.Equal(t, "Bob", svc.Matches(ctx)[0].Player2Name)

	_, err = svc.Player(ctx, players[1].ID)
	assert.ErrorIs(t, err, errors.ErrPlayerNotFound)
}

func TestSessionService_StateIsACopy(t *testing.T) {
	svc, _ := newSessionService(t, "Alice")
	ctx := context.Background()

	st := svc.State(ctx)
	st.Players[0].Name = "Mallory"

	assert.Equal(t, "Alice", svc.Players(ctx)[0].Name)
}

func TestSessionService_Replace(t *testing.T) {
	svc, repo := newSessionService(t, "Alice")
	ctx := context.Background()

	next := session.NewState(rating.Config{KFactor: 10, Initial: 1000})
	next.Players = []models.Player{testutil.Player("x", "Xavier")}
	repo.On("Replace", ctx, mock.AnythingOfType("*session.State")).Return(nil)

	require.NoError(t, svc.Replace(ctx, next))
	assert.Equal(t, "Xavier", svc.Players(ctx)[0].Name)
	assert.Equal(t, 10.0, svc.Settings(ctx).KFactor)
	repo.AssertExpectations(t)
}
