package session

import (
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDGenerator hands out opaque unique ids for new players and matches.
type IDGenerator interface {
	NewPlayerID() (string, error)
	NewMatchID() (string, error)
}

// Clock supplies match timestamps.
type Clock interface {
	Now() time.Time
}

// DefaultIDs uses uuids for players and nanoids for matches.
type DefaultIDs struct{}

func (DefaultIDs) NewPlayerID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (DefaultIDs) NewMatchID() (string, error) {
	return gonanoid.New()
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
