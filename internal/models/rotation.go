package models

type OpponentCount struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Fights   int    `json:"fights"`
}

// Rotation is the round-robin position of one player: the current round and
// the opponents still below that round's fight target.
type Rotation struct {
	PlayerID  string          `json:"player_id"`
	Round     int             `json:"round"`
	Opponents []OpponentCount `json:"opponents"`
	AllFought bool            `json:"all_fought"`
}
