package models

import "time"

// StreakType is the kind of unbroken run a player is currently on.
type StreakType string

const (
	StreakNone StreakType = "none"
	StreakWin  StreakType = "win"
	StreakLoss StreakType = "loss"
)

type Player struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Rating           int        `json:"rating"`
	Wins             int        `json:"wins"`
	Losses           int        `json:"losses"`
	Draws            int        `json:"draws"`
	LastRatingChange int        `json:"last_rating_change"`
	StreakType       StreakType `json:"streak_type"`
	StreakLength     int        `json:"streak_length"`

	// Display snapshot. FrozenRank/FrozenRating are what the leaderboard shows
	// between refreshes, PreviousRank/PreviousRating what it showed before the
	// last refresh. A zero rank means no snapshot was taken.
	FrozenRank     int `json:"frozen_rank"`
	FrozenRating   int `json:"frozen_rating"`
	PreviousRank   int `json:"previous_rank"`
	PreviousRating int `json:"previous_rating"`

	CreatedAt time.Time `json:"created_at"`
}

// MatchesPlayed is wins+losses+draws.
func (p Player) MatchesPlayed() int {
	return p.Wins + p.Losses + p.Draws
}

// WinRate returns the share of decisive and drawn matches won, 0 when none were played.
func (p Player) WinRate() float64 {
	played := p.MatchesPlayed()
	if played == 0 {
		return 0
	}
	return float64(p.Wins) / float64(played)
}

// FindPlayer returns the index of the player with the given id, or -1.
func FindPlayer(players []Player, id string) int {
	for i := range players {
		if players[i].ID == id {
			return i
		}
	}
	return -1
}
