package rating

import (
	"math"

	"github.com/vytor/duelrank/internal/models"
)

const (
	DefaultKFactor       = 32
	DefaultInitialRating = 1200
)

// Config is the session-wide rating configuration. Changing it never alters
// recorded matches.
type Config struct {
	KFactor float64 `json:"k_factor"`
	Initial int     `json:"initial_rating"`
}

func DefaultConfig() Config {
	return Config{KFactor: DefaultKFactor, Initial: DefaultInitialRating}
}

// InitialRating is the seed for new players and for resets.
func (c Config) InitialRating() int {
	return c.Initial
}

// ExpectedScore is the logistic probability that a player rated ratingA beats
// one rated ratingB.
func ExpectedScore(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
}

// CalculateNewRatings applies one match to both ratings. Each side is updated
// independently from its own expected score. The delta is rounded half away
// from zero before being added, so a decisive result between equal ratings
// moves both players by the same amount in opposite directions.
func CalculateNewRatings(ratingA, ratingB int, outcome models.Outcome, kFactor float64) (int, int) {
	var scoreA, scoreB float64
	switch outcome {
	case models.OutcomePlayer1Win:
		scoreA, scoreB = 1, 0
	case models.OutcomePlayer2Win:
		scoreA, scoreB = 0, 1
	default:
		scoreA, scoreB = 0.5, 0.5
	}

	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := 1 - expectedA

	return ratingA + round(kFactor*(scoreA-expectedA)), ratingB + round(kFactor*(scoreB-expectedB))
}

// Odds returns both expected scores and the rating each side would gain by winning.
func Odds(a, b models.Player, kFactor float64) models.Odds {
	winA, _ := CalculateNewRatings(a.Rating, b.Rating, models.OutcomePlayer1Win, kFactor)
	_, winB := CalculateNewRatings(a.Rating, b.Rating, models.OutcomePlayer2Win, kFactor)
	expectedA := ExpectedScore(a.Rating, b.Rating)
	return models.Odds{
		PlayerAID:   a.ID,
		PlayerBID:   b.ID,
		ExpectedA:   expectedA,
		ExpectedB:   1 - expectedA,
		RatingGainA: winA - a.Rating,
		RatingGainB: winB - b.Rating,
	}
}

// round converts without panicking on NaN/Inf coming from a nonsensical K.
func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
