package models

// Snapshot is a previously captured rank/rating mapping keyed by player id.
// Current* is the frozen display, Previous* the one before it.
type Snapshot struct {
	CurrentRanks    map[string]int `json:"current_ranks"`
	PreviousRanks   map[string]int `json:"previous_ranks"`
	CurrentRatings  map[string]int `json:"current_ratings"`
	PreviousRatings map[string]int `json:"previous_ratings"`
}

// SnapshotFromPlayers collects the display snapshot fields carried on each player.
func SnapshotFromPlayers(players []Player) Snapshot {
	snap := Snapshot{
		CurrentRanks:    make(map[string]int),
		PreviousRanks:   make(map[string]int),
		CurrentRatings:  make(map[string]int),
		PreviousRatings: make(map[string]int),
	}
	for _, p := range players {
		if p.FrozenRank > 0 {
			snap.CurrentRanks[p.ID] = p.FrozenRank
			snap.CurrentRatings[p.ID] = p.FrozenRating
		}
		if p.PreviousRank > 0 {
			snap.PreviousRanks[p.ID] = p.PreviousRank
			snap.PreviousRatings[p.ID] = p.PreviousRating
		}
	}
	return snap
}

type LeaderboardRow struct {
	Position      int        `json:"position"`
	PlayerID      string     `json:"player_id"`
	Name          string     `json:"name"`
	Rating        int        `json:"rating"`
	Wins          int        `json:"wins"`
	Losses        int        `json:"losses"`
	Draws         int        `json:"draws"`
	MatchesPlayed int        `json:"matches_played"`
	WinRate       float64    `json:"win_rate"`
	StreakType    StreakType `json:"streak_type"`
	StreakLength  int        `json:"streak_length"`
	RankChange    int        `json:"rank_change"`
	RatingChange  int        `json:"rating_change"`
}

// Odds are display-time win probabilities for a pairing.
type Odds struct {
	PlayerAID   string  `json:"player_a_id"`
	PlayerBID   string  `json:"player_b_id"`
	ExpectedA   float64 `json:"expected_a"`
	ExpectedB   float64 `json:"expected_b"`
	RatingGainA int     `json:"rating_gain_a"`
	RatingGainB int     `json:"rating_gain_b"`
}

// Standing is one line of a what-if replay under a given K factor.
type Standing struct {
	Position int    `json:"position"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}

// KFactorComparison holds the final standings after replaying the whole match
// log with KFactor.
type KFactorComparison struct {
	KFactor   float64    `json:"k_factor"`
	Standings []Standing `json:"standings"`
}
