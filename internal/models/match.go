package models

import "time"

// Outcome of a match from the point of view of its two slots.
type Outcome string

const (
	OutcomePlayer1Win Outcome = "player1_win"
	OutcomePlayer2Win Outcome = "player2_win"
	OutcomeDraw       Outcome = "draw"
)

// Valid reports whether o is one of the three known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePlayer1Win, OutcomePlayer2Win, OutcomeDraw:
		return true
	}
	return false
}

// Result is a match seen from one participant.
type Result int

const (
	ResultNotInvolved Result = iota
	ResultWin
	ResultLoss
	ResultDraw
)

// Match is immutable once appended to the log. Names are copied at match time.
type Match struct {
	ID                  string    `json:"id"`
	PlayedAt            time.Time `json:"played_at"`
	Player1ID           string    `json:"player1_id"`
	Player1Name         string    `json:"player1_name"`
	Player2ID           string    `json:"player2_id"`
	Player2Name         string    `json:"player2_name"`
	Player1RatingBefore int       `json:"player1_rating_before"`
	Player2RatingBefore int       `json:"player2_rating_before"`
	Player1RatingAfter  int       `json:"player1_rating_after"`
	Player2RatingAfter  int       `json:"player2_rating_after"`
	Player1Delta        int       `json:"player1_delta"`
	Player2Delta        int       `json:"player2_delta"`
	Outcome             Outcome   `json:"outcome"`
}

// Involves reports whether the player took part in the match.
func (m Match) Involves(playerID string) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// IsPair reports whether the match was played between a and b, in either slot order.
func (m Match) IsPair(a, b string) bool {
	return (m.Player1ID == a && m.Player2ID == b) || (m.Player1ID == b && m.Player2ID == a)
}

// ResultFor returns the match result for the given player.
func (m Match) ResultFor(playerID string) Result {
	var slot int
	switch playerID {
	case m.Player1ID:
		slot = 1
	case m.Player2ID:
		slot = 2
	default:
		return ResultNotInvolved
	}
	switch m.Outcome {
	case OutcomeDraw:
		return ResultDraw
	case OutcomePlayer1Win:
		if slot == 1 {
			return ResultWin
		}
		return ResultLoss
	case OutcomePlayer2Win:
		if slot == 2 {
			return ResultWin
		}
		return ResultLoss
	}
	return ResultNotInvolved
}

// MatchFilter narrows the persisted match history.
type MatchFilter struct {
	PlayerID string
	Outcome  Outcome
	Since    *time.Time
	Until    *time.Time
	Limit    int
	Offset   int
	OrderDir string
}
