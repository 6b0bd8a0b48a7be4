package rotation

import (
	"sort"

	"github.com/vytor/duelrank/internal/models"
)

// RemainingOpponents tells playerID whom they still have to face in the current
// round-robin round. A round closes once every opponent has been played as many
// times as the round number, so no pair gets an extra meeting before all pairs
// have caught up.
func RemainingOpponents(playerID string, players []models.Player, matches []models.Match) models.Rotation {
	counts := FightCounts(playerID, players, matches)
	if len(counts) == 0 {
		return models.Rotation{PlayerID: playerID, Round: 1, Opponents: []models.OpponentCount{}, AllFought: true}
	}

	minFights := counts[0].Fights
	for _, c := range counts[1:] {
		if c.Fights < minFights {
			minFights = c.Fights
		}
	}
	round := minFights + 1

	remaining := make([]models.OpponentCount, 0, len(counts))
	for _, c := range counts {
		if c.Fights < round {
			remaining = append(remaining, c)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Fights < remaining[j].Fights
	})

	return models.Rotation{
		PlayerID:  playerID,
		Round:     round,
		Opponents: remaining,
		AllFought: len(remaining) == 0,
	}
}

// FightCounts returns, in roster order, how many matches playerID has played
// against every other player.
func FightCounts(playerID string, players []models.Player, matches []models.Match) []models.OpponentCount {
	counts := make([]models.OpponentCount, 0, len(players))
	index := make(map[string]int, len(players))
	for _, p := range players {
		if p.ID == playerID {
			continue
		}
		index[p.ID] = len(counts)
		counts = append(counts, models.OpponentCount{PlayerID: p.ID, Name: p.Name})
	}

	for _, m := range matches {
		var other string
		switch playerID {
		case m.Player1ID:
			other = m.Player2ID
		case m.Player2ID:
			other = m.Player1ID
		default:
			continue
		}
		if i, ok := index[other]; ok {
			counts[i].Fights++
		}
	}
	return counts
}
