package session

import (
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
)

// State is the roster and the append-only match log of one session, plus the
// rating configuration in force. It is owned by a single writer.
type State struct {
	Players []models.Player
	Matches []models.Match
	Rating  rating.Config
}

// NewState returns an empty session using cfg.
func NewState(cfg rating.Config) *State {
	return &State{
		Players: []models.Player{},
		Matches: []models.Match{},
		Rating:  cfg,
	}
}

// Clone returns a deep copy. Players and matches hold only values, so copying
// the slices is enough.
func (s *State) Clone() *State {
	c := &State{
		Players: make([]models.Player, len(s.Players)),
		Matches: make([]models.Match, len(s.Matches)),
		Rating:  s.Rating,
	}
	copy(c.Players, s.Players)
	copy(c.Matches, s.Matches)
	return c
}

// Player returns a copy of the player with the given id.
func (s *State) Player(id string) (models.Player, bool) {
	i := models.FindPlayer(s.Players, id)
	if i < 0 {
		return models.Player{}, false
	}
	return s.Players[i], true
}
