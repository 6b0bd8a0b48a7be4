package leaderboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/duelrank/internal/leaderboard"
	"github.com/vytor/duelrank/internal/models"
)

func rowIDs(rows []models.LeaderboardRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.PlayerID
	}
	return out
}

func TestRank_LiveOrder(t *testing.T) {
	players := []models.Player{
		{ID: "p1", Rating: 1200},
		{ID: "p2", Rating: 1300},
		{ID: "p3", Rating: 1200},
	}

	rows := leaderboard.Rank(players, nil, models.Snapshot{}, 1200)

	assert.Equal(t, []string{"p2", "p1", "p3"}, rowIDs(rows), "ties keep roster order")
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 3, rows[2].Position)
}

func TestRank_FrozenOrder(t *testing.T) {
	players := []models.Player{
		{ID: "p1", Rating: 1200},
		{ID: "p2", Rating: 1300},
	}
	snap := models.Snapshot{
		CurrentRanks:  map[string]int{"p1": 2, "p2": 1},
		PreviousRanks: map[string]int{"p1": 1, "p2": 2},
	}

	rows := leaderboard.Rank(players, nil, snap, 1200)

	assert.Equal(t, []string{"p2", "p1"}, rowIDs(rows))
	assert.Equal(t, -1, rows[1].RankChange, "p1 dropped from 1 to 2")
	assert.Equal(t, 1, rows[0].RankChange, "p2 climbed from 2 to 1")
}

func TestRank_FrozenOrderIgnoresLiveRating(t *testing.T) {
	players := []models.Player{
		{ID: "p1", Rating: 1500},
		{ID: "p2", Rating: 1100},
	}
	snap := models.Snapshot{CurrentRanks: map[string]int{"p1": 2, "p2": 1}}

	rows := leaderboard.Rank(players, nil, snap, 1200)

	assert.Equal(t, []string{"p2", "p1"}, rowIDs(rows))
}

func TestRank_UnfrozenPlayersFollow(t *testing.T) {
	players := []models.Player{
		{ID: "new", Rating: 1900},
		{ID: "p1", Rating: 1200},
		{ID: "p2", Rating: 1300},
	}
	snap := models.Snapshot{CurrentRanks: map[string]int{"p1": 1, "p2": 2}}

	rows := leaderboard.Rank(players, nil, snap, 1200)

	assert.Equal(t, []string{"p1", "p2", "new"}, rowIDs(rows))
	assert.Equal(t, 0, rows[2].RankChange)
}

func TestRank_RatingChangeDefaults(t *testing.T) {
	players := []models.Player{
		{ID: "both", Rating: 1250},
		{ID: "none", Rating: 1180},
	}
	snap := models.Snapshot{
		CurrentRanks:    map[string]int{"both": 1},
		CurrentRatings:  map[string]int{"both": 1240},
		PreviousRatings: map[string]int{"both": 1210},
	}

	rows := leaderboard.Rank(players, nil, snap, 1200)
	require.Len(t, rows, 2)

	assert.Equal(t, 30, rows[0].RatingChange)
	assert.Equal(t, -20, rows[1].RatingChange, "live rating minus initial rating")
}

func TestRank_RefreshesStreaks(t *testing.T) {
	players := []models.Player{
		{ID: "a", Rating: 1216, Wins: 1},
		{ID: "b", Rating: 1184, Losses: 1, StreakType: models.StreakWin, StreakLength: 5},
	}
	matches := []models.Match{{
		ID: "m1", PlayedAt: time.Now(), Player1ID: "a", Player2ID: "b", Outcome: models.OutcomePlayer1Win,
	}}

	rows := leaderboard.Rank(players, matches, models.Snapshot{}, 1200)

	assert.Equal(t, models.StreakWin, rows[0].StreakType)
	assert.Equal(t, 1, rows[0].StreakLength)
	assert.Equal(t, models.StreakLoss, rows[1].StreakType)
	assert.Equal(t, 1, rows[1].StreakLength)
	assert.Equal(t, 1, rows[1].MatchesPlayed)
}

func TestRank_Empty(t *testing.T) {
	rows := leaderboard.Rank(nil, nil, models.Snapshot{}, 1200)
	assert.Empty(t, rows)
}

func TestCapture(t *testing.T) {
	players := []models.Player{
		{ID: "p1", Rating: 1200},
		{ID: "p2", Rating: 1300},
	}

	ranks, ratings := leaderboard.Capture(players)

	assert.Equal(t, map[string]int{"p2": 1, "p1": 2}, ranks)
	assert.Equal(t, map[string]int{"p2": 1300, "p1": 1200}, ratings)
}
